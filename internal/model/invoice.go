package model

import "time"

const (
	InvoiceStatusPaid   = "paid"
	InvoiceStatusVoided = "voided"
)

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// LineItem snapshots name and price at sale time; later product edits never
// touch an existing invoice. Total is always qty * price, recomputed on
// every mutation of qty or price.
type LineItem struct {
	LineID    string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	Total     float64 `json:"total"`
}

// Invoice is immutable once created except for the one-way void transition.
// Invoices are never physically deleted.
type Invoice struct {
	ID       string   `json:"-"`
	Revision Revision `json:"-"`

	BillNo        string     `json:"billNo"`
	Customer      Customer   `json:"customer"`
	Items         []LineItem `json:"items"`
	GrandTotal    float64    `json:"grandTotal"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	VoidedBy      string     `json:"voidedBy,omitempty"`
	VoidedAt      *time.Time `json:"voidedAt,omitempty"`
}
