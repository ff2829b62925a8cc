package model

import "time"

type InventoryItem struct {
	ID       string   `json:"-"`
	Revision Revision `json:"-"`

	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"` // barcode / lookup code
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
