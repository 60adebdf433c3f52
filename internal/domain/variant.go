package domain

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Slug        string    `json:"slug" gorm:"size:200;uniqueIndex"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	IsActive    bool      `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// ProductVariant is the purchasable SKU-level unit. Stock is the contested
// resource: only the conditional decrement in the repository may lower it
// during order placement.
type ProductVariant struct {
	ID             string         `json:"id" gorm:"primaryKey;size:36"`
	ProductID      string         `json:"productId" gorm:"size:36;index"`
	Product        *Product       `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	SKU            string         `json:"sku" gorm:"size:64;uniqueIndex"`
	Price          int64          `json:"price" gorm:"not null"`
	CompareAtPrice int64          `json:"compareAtPrice,omitempty"`
	Stock          int            `json:"stock" gorm:"not null"`
	IsActive       bool           `json:"isActive" gorm:"default:true"`
	CreatedAt      time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
