package models

import "time"

// MenuType decides which ordering flow a dish is offered in
type MenuType string

const (
	MenuTypeCustomer MenuType = "customer"
	MenuTypeDoctor   MenuType = "doctor"
)

type MenuItem struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Category    string    `json:"category" gorm:"not null;index"`
	Price       float64   `json:"price" gorm:"not null"`
	ImageURL    string    `json:"image_url"`
	MenuType    MenuType  `json:"menu_type" gorm:"not null;default:'customer';index"`
	Rating      float64   `json:"rating" gorm:"not null;default:0"`  // mean of counted ratings
	Reviews     int       `json:"reviews" gorm:"not null;default:0"` // ratings backing Rating
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Favorite marks a dish as favorited by a user. Presence is the whole state.
type Favorite struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_menu"`
	MenuID    string    `json:"menu_id" gorm:"not null;uniqueIndex:idx_favorite_user_menu;index"`
	CreatedAt time.Time `json:"created_at"`
}
