package models

import (
	"time"
)

type ProductType string

const (
	TypeElectronics ProductType = "Electronics"
	TypeClothing    ProductType = "Clothing"
	TypeFood        ProductType = "Food"
	TypeFurniture   ProductType = "Furniture"
)

func (t ProductType) Valid() bool {
	switch t {
	case TypeElectronics, TypeClothing, TypeFood, TypeFurniture:
		return true
	}
	return false
}

// Prices are stored in minor units (cents).
type Product struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name        string         `gorm:"not null"                       json:"name"`
	Description string         `json:"description"`
	Price       int64          `gorm:"not null"                       json:"price"`
	Quantity    int            `gorm:"not null;check:quantity >= 0"   json:"quantity"`
	Height      float64        `json:"height"`
	Width       float64        `json:"width"`
	Length      float64        `json:"length"`
	Type        ProductType    `gorm:"not null"                       json:"type"`
	Images      []ProductImage `gorm:"constraint:OnDelete:CASCADE"    json:"images"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"index;not null"           json:"product_id"`
	ImagePath string `gorm:"not null"                 json:"image_path"`
	IsDefault bool   `gorm:"default:false"            json:"is_default"`
}

type Order struct {
	ID              uint        `gorm:"primaryKey;autoIncrement"    json:"id"`
	CustomerName    string      `gorm:"size:100;not null"           json:"customer_name"`
	ShippingAddress string      `gorm:"size:250;not null"           json:"shipping_address"`
	BillingAddress  string      `gorm:"size:250;not null"           json:"billing_address"`
	PhoneNumber     string      `gorm:"not null"                    json:"phone_number"`
	Email           string      `gorm:"not null"                    json:"email"`
	TotalPrice      int64       `gorm:"not null"                    json:"total_price"`
	Items           []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"order_items"`
}

// LineTotal is frozen at order-creation time and never re-derived
// from the catalog afterwards.
type OrderItem struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID   uint  `gorm:"index;not null"              json:"order_id"`
	ProductID uint  `gorm:"not null"                    json:"product_id"`
	Quantity  int   `gorm:"not null;check:quantity > 0" json:"quantity"`
	LineTotal int64 `gorm:"not null"                    json:"line_total"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"not null"                 json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Token     string    `gorm:"unique;not null" json:"token"`
	UserID    uint      `gorm:"index;not null"  json:"user_id"`
	Role      string    `gorm:"not null"        json:"role"`
	ExpiresAt time.Time `gorm:"not null"        json:"expires_at"`
	Revoked   bool      `gorm:"default:false"   json:"revoked"`
}
