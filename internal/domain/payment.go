package domain

import "time"

// PaymentNotification carries the fields consumed from a gateway webhook
// delivery. Deliveries are at-least-once and may arrive out of order.
type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// PaymentEvent is an append-only record of a received notification and
// whether it was applied to the order, kept so the terminality decision is
// auditable.
type PaymentEvent struct {
	ID                string        `json:"id" gorm:"primaryKey;size:36"`
	OrderID           string        `json:"orderId" gorm:"size:36;index;not null"`
	TransactionID     string        `json:"transactionId" gorm:"size:64"`
	TransactionStatus string        `json:"transactionStatus" gorm:"size:32"`
	FraudStatus       string        `json:"fraudStatus" gorm:"size:32"`
	MappedStatus      PaymentStatus `json:"mappedStatus" gorm:"type:varchar(20)"`
	Applied           bool          `json:"applied"`
	CreatedAt         time.Time     `json:"createdAt" gorm:"autoCreateTime"`
}

// PaymentUpdate is a partial update of an order's payment fields. Nil
// pointers leave the stored value untouched.
type PaymentUpdate struct {
	PaymentStatus PaymentStatus
	PaymentID     *string
	SnapToken     *string
}
