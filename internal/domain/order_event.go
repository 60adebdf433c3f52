package domain

import "time"

type OrderCreatedEvent struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

type PaymentUpdatedEvent struct {
	OrderID       string        `json:"orderId"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	TransactionID string        `json:"transactionId"`
}
