package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
	PaymentExpired PaymentStatus = "EXPIRED"
)

// IsTerminal reports whether the gateway notification stream is not allowed
// to move the order away from this state back to PENDING.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentFailed || s == PaymentExpired
}

type ShippingAddress struct {
	FullName    string `json:"fullName" gorm:"size:120"`
	Phone       string `json:"phone" gorm:"size:32"`
	FullAddress string `json:"fullAddress" gorm:"size:255"`
	City        string `json:"city" gorm:"size:80"`
	Province    string `json:"province" gorm:"size:80"`
	PostalCode  string `json:"postalCode" gorm:"size:16"`
}

// OrderItem snapshots the variant price at order-creation time so later
// price changes never alter historical orders.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	OrderID   string          `json:"orderId" gorm:"size:36;index;not null"`
	VariantID string          `json:"variantId" gorm:"size:36;not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     int64           `json:"price" gorm:"not null"`
	Variant   *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
}

type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	UserID          string          `json:"userId" gorm:"size:36;index;not null"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal        int64           `json:"subtotal" gorm:"not null"`
	ShippingCost    int64           `json:"shippingCost" gorm:"not null"`
	Total           int64           `json:"total" gorm:"not null"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	Notes           string          `json:"notes,omitempty" gorm:"size:500"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(20);default:'PENDING'"`
	PaymentID       string          `json:"paymentId,omitempty" gorm:"size:64"`
	SnapToken       string          `json:"snapToken,omitempty" gorm:"size:128"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}
