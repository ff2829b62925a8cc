package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-datastore/pkg/apperrors"
	"github.com/fekuna/omnipos-datastore/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/inventory"
	"github.com/fekuna/omnipos-datastore/internal/invoice"
	"github.com/fekuna/omnipos-datastore/internal/invoice/dto"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

type invoiceUseCase struct {
	repo      invoice.Repository
	inventory inventory.UseCase
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewInvoiceUseCase(repo invoice.Repository, inv inventory.UseCase, log logger.ZapLogger) invoice.UseCase {
	return &invoiceUseCase{
		repo:      repo,
		inventory: inv,
		logger:    log,
		now:       time.Now,
	}
}

// CommitSale runs the sale protocol:
//
//  1. Validating: reject an empty cart.
//  2. Persisting: put the invoice as a brand-new document. Failure here
//     aborts everything; the cart is untouched and can be retried.
//  3. AdjustingStock: decrement stock per line item. Each failure is
//     recorded and logged but never aborts the loop — the invoice is
//     already durably recorded, so this phase is best-effort.
//
// There is no rollback state: the design favors "invoice always recorded"
// over "stock always consistent".
func (uc *invoiceUseCase) CommitSale(ctx context.Context, input *dto.CommitSaleInput) (*model.Invoice, []invoice.StockAdjustment, error) {
	// 1. Validating
	if len(input.Items) == 0 {
		return nil, nil, fmt.Errorf("no items in cart: %w", apperrors.ErrValidation)
	}

	now := uc.now()
	billNo := input.BillNo
	if billNo == "" {
		billNo = generateBillNo(now)
	}

	items := make([]model.LineItem, 0, len(input.Items))
	var grandTotal float64
	for _, in := range input.Items {
		if in.Qty < 1 {
			return nil, nil, fmt.Errorf("line quantity must be at least 1: %w", apperrors.ErrValidation)
		}
		line := model.LineItem{
			LineID:    "line_" + uuid.New().String(),
			ProductID: in.ProductID,
			Name:      in.Name,
			Price:     in.Price,
			Qty:       in.Qty,
			// total is derived, never trusted from the caller
			Total: float64(in.Qty) * in.Price,
		}
		grandTotal += line.Total
		items = append(items, line)
	}

	inv := &model.Invoice{
		ID:            "inv_" + uuid.New().String(),
		BillNo:        billNo,
		Customer:      input.Customer,
		Items:         items,
		GrandTotal:    grandTotal,
		PaymentMethod: input.PaymentMethod,
		Status:        model.InvoiceStatusPaid,
		CreatedAt:     now,
	}

	// 2. Persisting
	if err := uc.repo.Create(ctx, inv); err != nil {
		return nil, nil, fmt.Errorf("persist invoice: %w", err)
	}

	// 3. AdjustingStock (best-effort)
	adjustments := make([]invoice.StockAdjustment, 0, len(items))
	for _, line := range items {
		_, err := uc.inventory.AdjustStock(ctx, line.ProductID, -line.Qty)
		if err != nil {
			uc.logger.Warn("stock adjustment failed for sold item",
				zap.String("invoice_id", inv.ID),
				zap.String("product_id", line.ProductID),
				zap.Int("qty", line.Qty),
				zap.Error(err),
			)
		}
		adjustments = append(adjustments, invoice.StockAdjustment{
			ProductID: line.ProductID,
			Qty:       line.Qty,
			Err:       err,
		})
	}

	uc.logger.Info("sale committed",
		zap.String("invoice_id", inv.ID),
		zap.String("bill_no", inv.BillNo),
		zap.Float64("grand_total", inv.GrandTotal),
	)

	// 4. Completed: the caller clears the cart and prints the receipt.
	return inv, adjustments, nil
}

// VoidInvoice flips paid -> voided, zeroes the grand total and stamps who
// voided it. The write is compare-and-swap on the invoice's current
// revision, so a concurrent edit surfaces as ErrConflict. Stock decrements
// applied at sale time are deliberately not reversed.
func (uc *invoiceUseCase) VoidInvoice(ctx context.Context, id, userID string) (*model.Invoice, error) {
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == model.InvoiceStatusVoided {
		return nil, fmt.Errorf("invoice %s is already voided: %w", id, apperrors.ErrValidation)
	}

	voidedAt := uc.now()
	inv.Status = model.InvoiceStatusVoided
	inv.GrandTotal = 0
	inv.VoidedBy = userID
	inv.VoidedAt = &voidedAt

	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	uc.logger.Info("invoice voided",
		zap.String("invoice_id", inv.ID),
		zap.String("voided_by", userID),
	)
	return inv, nil
}

func (uc *invoiceUseCase) Get(ctx context.Context, id string) (*model.Invoice, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *invoiceUseCase) List(ctx context.Context, order docstore.Order) ([]model.Invoice, error) {
	return uc.repo.FindAll(ctx, order)
}

// ShiftSummary totals today's non-voided invoices split into cash and
// everything else.
func (uc *invoiceUseCase) ShiftSummary(ctx context.Context, userID string) (*invoice.ShiftSummary, error) {
	invoices, err := uc.repo.FindAll(ctx, docstore.OrderInsertion)
	if err != nil {
		return nil, err
	}

	today := uc.now()
	summary := &invoice.ShiftSummary{}
	for _, inv := range invoices {
		if inv.Status == model.InvoiceStatusVoided {
			continue
		}
		y1, m1, d1 := inv.CreatedAt.Date()
		y2, m2, d2 := today.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			continue
		}
		summary.Count++
		summary.TotalAmount += inv.GrandTotal
		if inv.PaymentMethod == "Cash" {
			summary.Cash += inv.GrandTotal
		}
	}
	summary.Online = summary.TotalAmount - summary.Cash
	return summary, nil
}

func generateBillNo(now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "BILL-" + ms
}
