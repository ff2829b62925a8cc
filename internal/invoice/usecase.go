package invoice

import (
	"context"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/invoice/dto"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

// StockAdjustment is the recorded outcome of one best-effort stock
// decrement issued while committing a sale. Err is nil on success.
type StockAdjustment struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	Err       error  `json:"-"`
}

func (a StockAdjustment) Failed() bool { return a.Err != nil }

// ShiftSummary aggregates today's non-voided sales for the close-shift
// screen.
type ShiftSummary struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
	Cash        float64 `json:"cash"`
	Online      float64 `json:"online"`
}

type UseCase interface {
	// CommitSale records the invoice first, then decrements stock per line
	// item best-effort. The invoice is returned even when some decrements
	// failed; the adjustment slice tells the caller exactly what happened.
	CommitSale(ctx context.Context, input *dto.CommitSaleInput) (*model.Invoice, []StockAdjustment, error)

	// VoidInvoice is the one-way paid -> voided transition. It zeroes the
	// grand total and never reverses the stock decrements applied at sale
	// time.
	VoidInvoice(ctx context.Context, id, userID string) (*model.Invoice, error)

	Get(ctx context.Context, id string) (*model.Invoice, error)
	List(ctx context.Context, order docstore.Order) ([]model.Invoice, error)
	ShiftSummary(ctx context.Context, userID string) (*ShiftSummary, error)
}
