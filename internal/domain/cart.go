package domain

import "time"

type CartItem struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	CartID    string          `json:"cartId" gorm:"size:36;uniqueIndex:idx_cart_variant;not null"`
	VariantID string          `json:"variantId" gorm:"size:36;uniqueIndex:idx_cart_variant;not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Variant   *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

// Cart is created lazily on first access and is only ever emptied, never
// deleted.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	UserID    string     `json:"userId" gorm:"size:36;uniqueIndex;not null"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}
