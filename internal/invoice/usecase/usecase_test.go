package usecase

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-datastore/pkg/apperrors"
	"github.com/fekuna/omnipos-datastore/pkg/logger"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/inventory"
	invRepoPkg "github.com/fekuna/omnipos-datastore/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-datastore/internal/inventory/usecase"
	"github.com/fekuna/omnipos-datastore/internal/invoice/dto"
	saleRepoPkg "github.com/fekuna/omnipos-datastore/internal/invoice/repository"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

type fixture struct {
	sales     *invoiceUseCase
	inventory inventory.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := docstore.Open(filepath.Join(t.TempDir(), "omnipos.db"), 5000)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	invUC := invUCPkg.NewInventoryUseCase(invRepoPkg.NewDocRepository(store), logger.NewNop())
	saleUC := NewInvoiceUseCase(saleRepoPkg.NewDocRepository(store), invUC, logger.NewNop()).(*invoiceUseCase)
	return &fixture{sales: saleUC, inventory: invUC}
}

func (f *fixture) seedItem(t *testing.T, name string, price float64, stock int) *model.InventoryItem {
	t.Helper()
	item, err := f.inventory.AddItem(context.Background(), &model.InventoryItem{Name: name, Price: price, Stock: stock})
	if err != nil {
		t.Fatalf("seed item %s: %v", name, err)
	}
	return item
}

func TestCommitSaleRecordsInvoiceAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, "Coffee", 100, 5)

	inv, adjustments, err := f.sales.CommitSale(ctx, &dto.CommitSaleInput{
		Items: []dto.SaleLineInput{
			{ProductID: item.ID, Name: item.Name, Price: 100, Qty: 2},
		},
		PaymentMethod: "Cash",
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	if inv.GrandTotal != 200 {
		t.Errorf("grand total = %v, want 200", inv.GrandTotal)
	}
	if inv.Status != model.InvoiceStatusPaid {
		t.Errorf("status = %q, want %q", inv.Status, model.InvoiceStatusPaid)
	}
	if !strings.HasPrefix(inv.ID, "inv_") {
		t.Errorf("ID = %q, want inv_ prefix", inv.ID)
	}
	if !strings.HasPrefix(inv.BillNo, "BILL-") {
		t.Errorf("bill no = %q, want BILL- prefix", inv.BillNo)
	}
	if len(adjustments) != 1 || adjustments[0].Err != nil {
		t.Fatalf("adjustments = %+v, want one clean outcome", adjustments)
	}

	got, err := f.sales.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.GrandTotal != 200 {
		t.Errorf("persisted grand total = %v, want 200", got.GrandTotal)
	}

	items, err := f.inventory.List(ctx, docstore.OrderInsertion)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items[0].Stock != 3 {
		t.Errorf("stock = %d, want 3", items[0].Stock)
	}
}

func TestCommitSaleRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.sales.CommitSale(context.Background(), &dto.CommitSaleInput{})
	if !apperrors.IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}

	invoices, err := f.sales.List(context.Background(), docstore.OrderInsertion)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(invoices) != 0 {
		t.Errorf("invoice was persisted for an empty cart")
	}
}

func TestCommitSaleStockFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, "Coffee", 100, 5)

	inv, adjustments, err := f.sales.CommitSale(ctx, &dto.CommitSaleInput{
		Items: []dto.SaleLineInput{
			{ProductID: item.ID, Name: "Coffee", Price: 100, Qty: 1},
			{ProductID: "item_ghost", Name: "Ghost", Price: 50, Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	// The invoice survives even though one line could not adjust stock.
	if _, err := f.sales.Get(ctx, inv.ID); err != nil {
		t.Fatalf("invoice not persisted: %v", err)
	}
	if inv.GrandTotal != 150 {
		t.Errorf("grand total = %v, want 150", inv.GrandTotal)
	}

	if len(adjustments) != 2 {
		t.Fatalf("got %d adjustments, want 2", len(adjustments))
	}
	if adjustments[0].Err != nil {
		t.Errorf("first line should have adjusted cleanly: %v", adjustments[0].Err)
	}
	if adjustments[1].Err == nil || !adjustments[1].Failed() {
		t.Error("second line should report a failed adjustment")
	}
}

func TestCommitSaleDerivesLineTotals(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Coffee", 100, 5)

	inv, _, err := f.sales.CommitSale(context.Background(), &dto.CommitSaleInput{
		Items: []dto.SaleLineInput{
			{ProductID: item.ID, Name: "Coffee", Price: 40, Qty: 3},
		},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}
	if inv.Items[0].Total != 120 {
		t.Errorf("line total = %v, want 120", inv.Items[0].Total)
	}
	if !strings.HasPrefix(inv.Items[0].LineID, "line_") {
		t.Errorf("line id = %q, want line_ prefix", inv.Items[0].LineID)
	}
}

func TestVoidInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, "Coffee", 100, 5)

	inv, _, err := f.sales.CommitSale(ctx, &dto.CommitSaleInput{
		Items: []dto.SaleLineInput{{ProductID: item.ID, Name: "Coffee", Price: 100, Qty: 2}},
	})
	if err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	voided, err := f.sales.VoidInvoice(ctx, inv.ID, "user_w1")
	if err != nil {
		t.Fatalf("VoidInvoice: %v", err)
	}
	if voided.Status != model.InvoiceStatusVoided {
		t.Errorf("status = %q, want voided", voided.Status)
	}
	if voided.GrandTotal != 0 {
		t.Errorf("grand total = %v, want 0 after void", voided.GrandTotal)
	}
	if voided.VoidedBy != "user_w1" || voided.VoidedAt == nil {
		t.Error("void metadata not stamped")
	}

	// Stock decrements from the sale are not reversed.
	items, err := f.inventory.List(ctx, docstore.OrderInsertion)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items[0].Stock != 3 {
		t.Errorf("stock = %d after void, want 3", items[0].Stock)
	}

	if _, err := f.sales.VoidInvoice(ctx, inv.ID, "user_w1"); !apperrors.IsValidation(err) {
		t.Fatalf("double void err = %v, want validation", err)
	}
}

func TestVoidInvoiceMissing(t *testing.T) {
	f := newFixture(t)

	if _, err := f.sales.VoidInvoice(context.Background(), "inv_nope", "user_w1"); !apperrors.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestShiftSummarySplitsCashAndOnline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, "Coffee", 100, 100)

	commit := func(price float64, qty int, method string) *model.Invoice {
		inv, _, err := f.sales.CommitSale(ctx, &dto.CommitSaleInput{
			Items:         []dto.SaleLineInput{{ProductID: item.ID, Name: "Coffee", Price: price, Qty: qty}},
			PaymentMethod: method,
		})
		if err != nil {
			t.Fatalf("CommitSale: %v", err)
		}
		return inv
	}

	commit(100, 2, "Cash")   // 200 cash
	commit(50, 1, "UPI")     // 50 online
	v := commit(30, 1, "Cash") // voided below, excluded

	if _, err := f.sales.VoidInvoice(ctx, v.ID, "user_w1"); err != nil {
		t.Fatalf("VoidInvoice: %v", err)
	}

	summary, err := f.sales.ShiftSummary(ctx, "user_w1")
	if err != nil {
		t.Fatalf("ShiftSummary: %v", err)
	}
	if summary.Count != 2 {
		t.Errorf("count = %d, want 2", summary.Count)
	}
	if summary.TotalAmount != 250 {
		t.Errorf("total = %v, want 250", summary.TotalAmount)
	}
	if summary.Cash != 200 {
		t.Errorf("cash = %v, want 200", summary.Cash)
	}
	if summary.Online != 50 {
		t.Errorf("online = %v, want 50", summary.Online)
	}
}

func TestShiftSummaryExcludesOtherDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, "Coffee", 100, 100)

	// Backdate the clock for the first sale, then restore it.
	f.sales.now = func() time.Time { return time.Now().AddDate(0, 0, -1) }
	if _, _, err := f.sales.CommitSale(ctx, &dto.CommitSaleInput{
		Items: []dto.SaleLineInput{{ProductID: item.ID, Name: "Coffee", Price: 100, Qty: 1}},
	}); err != nil {
		t.Fatalf("CommitSale: %v", err)
	}
	f.sales.now = time.Now

	if _, _, err := f.sales.CommitSale(ctx, &dto.CommitSaleInput{
		Items: []dto.SaleLineInput{{ProductID: item.ID, Name: "Coffee", Price: 60, Qty: 1}},
	}); err != nil {
		t.Fatalf("CommitSale: %v", err)
	}

	summary, err := f.sales.ShiftSummary(ctx, "user_w1")
	if err != nil {
		t.Fatalf("ShiftSummary: %v", err)
	}
	if summary.Count != 1 || summary.TotalAmount != 60 {
		t.Errorf("summary = %+v, want only today's sale", summary)
	}
}

func TestGenerateBillNo(t *testing.T) {
	now := time.UnixMilli(1726000123456)
	got := generateBillNo(now)
	if got != "BILL-123456" {
		t.Errorf("bill no = %q, want BILL-123456", got)
	}
}
