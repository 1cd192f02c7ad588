package models

import "time"

// OrderStatus represents all possible states of a meal order
type OrderStatus string

const (
	StatusReceived        OrderStatus = "received"
	StatusPendingApproval OrderStatus = "pending-approval"
	StatusCreated         OrderStatus = "created"
	StatusPreparing       OrderStatus = "preparing"
	StatusReady           OrderStatus = "ready"
	StatusDelivering      OrderStatus = "delivering"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
)

// Statuses lists every order status in pipeline order.
var Statuses = []OrderStatus{
	StatusReceived,
	StatusPendingApproval,
	StatusCreated,
	StatusPreparing,
	StatusReady,
	StatusDelivering,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type DeliveryType string

const (
	DeliveryImmediate DeliveryType = "immediate"
	DeliveryAdvance   DeliveryType = "advance"
)

type OrderType string

const (
	OrderTypeCustomer OrderType = "customer"
	OrderTypeDoctor   OrderType = "doctor"
)

// PaymentDoctorQuota is the payment method stamped on every doctor quota order.
const PaymentDoctorQuota = "doctor_quota"

type Order struct {
	ID               string               `json:"id" gorm:"primaryKey"`
	UserID           uint                 `json:"user_id" gorm:"not null;index"`
	User             *User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TotalAmount      float64              `json:"total_amount"`
	DeliveryType     DeliveryType         `json:"delivery_type" gorm:"not null;default:'immediate'"`
	Status           OrderStatus          `json:"status" gorm:"not null;default:'received';index"`
	IsPaid           bool                 `json:"is_paid" gorm:"not null;default:false"`
	PaymentMethod    string               `json:"payment_method,omitempty"`
	ReceiptImageURL  *string              `json:"receipt_image_url,omitempty"`
	DeliveryProofURL *string              `json:"delivery_proof_url,omitempty"`
	CancelReason     *string              `json:"cancel_reason,omitempty"`
	ValidatedAt      *time.Time           `json:"validated_at,omitempty"`
	PreparingAt      *time.Time           `json:"preparing_at,omitempty"`
	ReadyAt          *time.Time           `json:"ready_at,omitempty"`
	DeliveringAt     *time.Time           `json:"delivering_at,omitempty"`
	DeliveredAt      *time.Time           `json:"delivered_at,omitempty"`
	Description      string               `json:"description"`
	MRN              string               `json:"mrn"`
	Floor            string               `json:"floor"`
	Location         string               `json:"location"`
	RoomNumber       string               `json:"room_number"`
	OrderType        OrderType            `json:"order_type" gorm:"not null;default:'customer'"`
	OrderDate        time.Time            `json:"order_date" gorm:"not null;index"`
	ExpectedDate     time.Time            `json:"expected_date" gorm:"not null"` // set once at creation
	ReviewText       *string              `json:"review_text,omitempty"`
	Items            []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory    []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	OrderID     string  `json:"order_id" gorm:"not null;index"`
	ProductID   string  `json:"product_id"`                   // soft reference to MenuItem
	ProductName string  `json:"product_name" gorm:"not null"` // snapshot name
	Quantity    int     `json:"quantity" gorm:"not null"`
	Price       float64 `json:"price" gorm:"not null"` // snapshot price at time of order
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

// DoctorQuotaClaim records the free first-of-day slot of a doctor. The unique
// (user_id, day) pair serializes concurrent first orders.
type DoctorQuotaClaim struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_quota_user_day"`
	Day       string    `gorm:"not null;uniqueIndex:idx_quota_user_day"` // YYYY-MM-DD in the ordering timezone
	OrderID   string    `gorm:"not null;index"`
	CreatedAt time.Time
}
