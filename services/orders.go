package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hospital-meal-api/events"
	"hospital-meal-api/metrics"
	"hospital-meal-api/models"
	"hospital-meal-api/statemachine"
)

const (
	advanceLeadTime   = 24 * time.Hour
	immediateLeadTime = time.Hour
	quotaDayLayout    = "2006-01-02"
	totalTolerance    = 0.005
)

type OrderItemInput struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
	Price       float64 `json:"price" binding:"min=0"`
}

// CreateOrderInput is what a caller submits when placing an order.
type CreateOrderInput struct {
	UserID          uint                `json:"-"`
	TotalAmount     float64             `json:"total_amount"`
	DeliveryType    models.DeliveryType `json:"delivery_type"`
	Status          models.OrderStatus  `json:"status"`
	IsPaid          bool                `json:"is_paid"`
	PaymentMethod   string              `json:"payment_method"`
	ReceiptImageURL *string             `json:"receipt_image_url"`
	Description     string              `json:"description"`
	MRN             string              `json:"mrn"`
	OrderType       models.OrderType    `json:"order_type"`
	Floor           string              `json:"floor" binding:"required"`
	Location        string              `json:"location" binding:"required"`
	RoomNumber      string              `json:"room_number"`
	Items           []OrderItemInput    `json:"items" binding:"required,min=1,dive"`
}

// StatusUpdate carries a requested status plus the optional fields that may
// change with it.
type StatusUpdate struct {
	Status       models.OrderStatus `json:"status" binding:"required"`
	IsPaid       *bool              `json:"is_paid"`
	ProofURL     *string            `json:"proof_url"`
	CancelReason *string            `json:"cancel_reason"`
	Note         string             `json:"note"`
}

// OrderFilter narrows order listings. Zero fields match everything.
type OrderFilter struct {
	Statuses  []models.OrderStatus
	UserID    uint
	OrderType models.OrderType
	From      *time.Time // inclusive
	To        *time.Time // exclusive
}

// TransitionError explains a refused status change.
type TransitionError struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Valid []models.OrderStatus
	err   error
}

func (e *TransitionError) Error() string { return e.err.Error() }
func (e *TransitionError) Unwrap() error { return e.err }

// OrderService owns order creation, the status pipeline and order queries.
type OrderService struct {
	db      *gorm.DB
	log     *slog.Logger
	metrics *metrics.Metrics
	events  events.Publisher
	loc     *time.Location
	now     func() time.Time
}

func newOrderService(d Deps) *OrderService {
	return &OrderService{
		db:      d.DB,
		log:     d.Logger.With("component", "orders"),
		metrics: d.Metrics,
		events:  d.Events,
		loc:     d.Location,
		now:     d.Now,
	}
}

// CreateOrder places an order. Doctors get one free order per calendar day
// created straight into the kitchen queue; later ones wait for cashier
// approval. Everyone else gets the status they submitted.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := validateOrderInput(&in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var (
		order     models.Order
		admission = "caller"
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, in.UserID).Error; err != nil {
			if errIsNotFound(err) {
				return notFound("user", in.UserID)
			}
			return err
		}

		orderType, err := s.resolveOrderType(&user, in.OrderType)
		if err != nil {
			return err
		}
		if orderType != models.OrderTypeDoctor {
			if sum := itemsTotal(in.Items); math.Abs(sum-in.TotalAmount) > totalTolerance {
				return invalid("total amount %.2f does not match items total %.2f", in.TotalAmount, sum)
			}
		}

		order = models.Order{
			ID:              newOrderID(orderType),
			UserID:          user.ID,
			TotalAmount:     in.TotalAmount,
			DeliveryType:    in.DeliveryType,
			Status:          in.Status,
			IsPaid:          in.IsPaid,
			PaymentMethod:   in.PaymentMethod,
			ReceiptImageURL: in.ReceiptImageURL,
			Description:     in.Description,
			MRN:             in.MRN,
			Floor:           in.Floor,
			Location:        in.Location,
			RoomNumber:      in.RoomNumber,
			OrderType:       orderType,
			OrderDate:       now,
			ExpectedDate:    now.Add(leadTime(in.DeliveryType)),
		}
		if orderType == models.OrderTypeDoctor {
			order.TotalAmount = 0
		}

		note := "order placed"
		if user.Role == models.RoleDoctor {
			first, err := s.claimQuota(tx, user.ID, order.ID, now)
			if err != nil {
				return err
			}
			order.IsPaid = true
			order.PaymentMethod = models.PaymentDoctorQuota
			if first {
				order.Status = models.StatusCreated
				admission = "quota"
				note = "daily doctor quota"
			} else {
				order.Status = models.StatusPendingApproval
				admission = "approval"
				note = "doctor quota used, awaiting approval"
			}
		}

		for _, it := range in.Items {
			price := it.Price
			if orderType == models.OrderTypeDoctor {
				price = 0
			}
			order.Items = append(order.Items, models.OrderItem{
				ID:          newID(),
				OrderID:     order.ID,
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				Price:       price,
			})
		}

		if err := tx.Omit("User").Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  order.Status,
			ChangedBy: user.ID,
			Note:      note,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrdersCreated.WithLabelValues(string(order.OrderType), admission).Inc()
	s.publish(ctx, events.OrderCreated, &order)
	s.log.InfoContext(ctx, "order created",
		"order_id", order.ID, "user_id", order.UserID, "type", order.OrderType,
		"status", order.Status, "admission", admission)
	return &order, nil
}

func itemsTotal(items []OrderItemInput) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

func validateOrderInput(in *CreateOrderInput) error {
	if in.UserID == 0 {
		return invalid("user is required")
	}
	if len(in.Items) == 0 {
		return invalid("order has no items")
	}
	for i, it := range in.Items {
		if it.ProductName == "" {
			return invalid("item %d: product name is required", i)
		}
		if it.Quantity < 1 {
			return invalid("item %d: quantity must be at least 1", i)
		}
		if it.Price < 0 {
			return invalid("item %d: price must not be negative", i)
		}
	}
	if in.TotalAmount < 0 {
		return invalid("total amount must not be negative")
	}
	if in.Floor == "" || in.Location == "" {
		return invalid("floor and location are required")
	}
	switch in.DeliveryType {
	case "":
		in.DeliveryType = models.DeliveryImmediate
	case models.DeliveryImmediate, models.DeliveryAdvance:
	default:
		return invalid("unknown delivery type %q", in.DeliveryType)
	}
	if in.Status == "" {
		in.Status = models.StatusReceived
	}
	if !in.Status.Valid() {
		return invalid("unknown status %q", in.Status)
	}
	switch in.OrderType {
	case "", models.OrderTypeCustomer, models.OrderTypeDoctor:
	default:
		return invalid("unknown order type %q", in.OrderType)
	}
	return nil
}

// resolveOrderType reconciles the requested order type with the account role.
// Quota admission follows the role; the order type decides pricing and the id
// prefix, so the two must agree.
func (s *OrderService) resolveOrderType(user *models.User, requested models.OrderType) (models.OrderType, error) {
	if requested == "" {
		requested = models.OrderTypeCustomer
	}
	switch {
	case user.Role == models.RoleDoctor && requested != models.OrderTypeDoctor:
		return "", invalid("doctor accounts must place doctor orders")
	case user.Role != models.RoleDoctor && requested == models.OrderTypeDoctor:
		if user.Role != models.RoleAdmin {
			return "", fmt.Errorf("%w: only doctors may place doctor orders", ErrForbidden)
		}
		s.log.Warn("admin placing doctor order outside the quota", "user_id", user.ID)
	}
	return requested, nil
}

// claimQuota reports whether this order takes the doctor's free slot for the
// day. The claim row is unique per (doctor, day), so of two concurrent first
// orders exactly one inserts it.
func (s *OrderService) claimQuota(tx *gorm.DB, userID uint, orderID string, now time.Time) (bool, error) {
	start, end := dayBounds(now, s.loc)

	var existing int64
	if err := tx.Model(&models.Order{}).
		Where("user_id = ? AND order_date >= ? AND order_date < ?", userID, start.UTC(), end.UTC()).
		Count(&existing).Error; err != nil {
		return false, err
	}

	claim := models.DoctorQuotaClaim{UserID: userID, Day: start.Format(quotaDayLayout), OrderID: orderID}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1 && existing == 0, nil
}

func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func leadTime(dt models.DeliveryType) time.Duration {
	if dt == models.DeliveryAdvance {
		return advanceLeadTime
	}
	return immediateLeadTime
}

// milestoneColumn is the timestamp column stamped on entering a status.
func milestoneColumn(status models.OrderStatus) string {
	switch status {
	case models.StatusCreated:
		return "validated_at"
	case models.StatusPreparing:
		return "preparing_at"
	case models.StatusReady:
		return "ready_at"
	case models.StatusDelivering:
		return "delivering_at"
	case models.StatusDelivered:
		return "delivered_at"
	}
	return ""
}

// UpdateOrderStatus moves an order along the pipeline on behalf of a staff
// member, stamping the milestone of the new status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor Actor, orderID string, upd StatusUpdate) (*models.Order, error) {
	var order *models.Order
	var from models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		from = current.Status
		if err := statemachine.CanTransition(from, upd.Status, actor.Role); err != nil {
			return &TransitionError{From: from, To: upd.Status, Valid: statemachine.ValidTransitionsFrom(from), err: err}
		}
		order, err = s.applyStatus(tx, current, actor, upd, upd.Note)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, order, from, actor)
	return order, nil
}

// ForceOrderStatus sets any known status, bypassing the transition table.
// Admin only.
func (s *OrderService) ForceOrderStatus(ctx context.Context, actor Actor, orderID string, status models.OrderStatus, reason string) (*models.Order, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may override order status", ErrForbidden)
	}
	if !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}

	var order *models.Order
	var from models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		from = current.Status
		order, err = s.applyStatus(tx, current, actor, StatusUpdate{Status: status}, "[ADMIN OVERRIDE] "+reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.WarnContext(ctx, "order status overridden",
		"order_id", orderID, "from", from, "to", status, "admin_id", actor.UserID)
	s.afterTransition(ctx, order, from, actor)
	return order, nil
}

func (s *OrderService) applyStatus(tx *gorm.DB, order *models.Order, actor Actor, upd StatusUpdate, note string) (*models.Order, error) {
	updates := map[string]interface{}{"status": upd.Status}
	if col := milestoneColumn(upd.Status); col != "" {
		updates[col] = s.now().UTC()
	}
	if upd.IsPaid != nil {
		updates["is_paid"] = *upd.IsPaid
	}
	if upd.ProofURL != nil {
		updates["delivery_proof_url"] = *upd.ProofURL
	}
	if upd.CancelReason != nil {
		updates["cancel_reason"] = *upd.CancelReason
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := tx.Create(&models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   upd.Status,
		ChangedBy:  actor.UserID,
		Note:       note,
	}).Error; err != nil {
		return nil, err
	}
	return loadOrder(tx, order.ID)
}

func (s *OrderService) afterTransition(ctx context.Context, order *models.Order, from models.OrderStatus, actor Actor) {
	s.metrics.StatusTransitions.WithLabelValues(string(order.Status)).Inc()
	s.publish(ctx, events.OrderStatusChanged, order)
	s.log.InfoContext(ctx, "order status changed",
		"order_id", order.ID, "from", from, "to", order.Status,
		"actor_id", actor.UserID, "actor_role", actor.Role)
}

// UpdateOrderDetails edits the cashier-maintained free text of an order.
func (s *OrderService) UpdateOrderDetails(ctx context.Context, orderID, mrn, description string) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Updates(map[string]interface{}{"mrn": mrn, "description": description})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("order", orderID)
		}
		var err error
		order, err = loadOrder(tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes an order with its items and history, and releases the
// doctor quota slot it held.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = loadOrder(tx, orderID); err != nil {
			return err
		}
		for _, m := range []interface{}{&models.OrderItem{}, &models.OrderStatusHistory{}, &models.DoctorQuotaClaim{}} {
			if err := tx.Where("order_id = ?", orderID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Order{}, "id = ?", orderID).Error
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.OrderDeleted, order)
	s.log.InfoContext(ctx, "order deleted", "order_id", orderID)
	return nil
}

// GetAllOrders lists every order with its items and owner, newest first.
// Staff dashboards use it for both the pending queue and the full history.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.GetOrders(ctx, OrderFilter{})
}

// GetMyOrders lists the caller's own orders, newest first.
func (s *OrderService) GetMyOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.GetOrders(ctx, OrderFilter{UserID: userID})
}

func (s *OrderService) GetOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Preload("Items").Preload("User")
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.OrderType != "" {
		q = q.Where("order_type = ?", f.OrderType)
	}
	if f.From != nil {
		q = q.Where("order_date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("order_date < ?", f.To.UTC())
	}

	var orders []models.Order
	if err := q.Order("order_date desc, id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns one order with items, owner and status history.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errIsNotFound(err) {
			return nil, notFound("order", orderID)
		}
		return nil, err
	}
	return &order, nil
}

func loadOrder(tx *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errIsNotFound(err) {
			return nil, notFound("order", orderID)
		}
		return nil, err
	}
	return &order, nil
}

// publish runs after commit. A lost event never fails the operation.
func (s *OrderService) publish(ctx context.Context, t events.EventType, o *models.Order) {
	err := s.events.Publish(ctx, events.OrderEvent{
		Type:      t,
		OrderID:   o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		OrderType: o.OrderType,
		At:        s.now().UTC(),
	})
	if err != nil {
		s.log.WarnContext(ctx, "publish order event failed", "type", t, "order_id", o.ID, "error", err)
	}
}
