package dto

import "github.com/fekuna/omnipos-datastore/internal/model"

type SaleLineInput struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

type CommitSaleInput struct {
	Customer      model.Customer  `json:"customer"`
	Items         []SaleLineInput `json:"items"`
	PaymentMethod string          `json:"paymentMethod"`
	UserID        string          `json:"userId"`
	// BillNo is a display identifier only; generated when empty.
	BillNo string `json:"billNo"`
}
