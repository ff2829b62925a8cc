package listener

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fekuna/omnipos-datastore/pkg/logger"

	"github.com/fekuna/omnipos-datastore/internal/audit"
	auditRepoPkg "github.com/fekuna/omnipos-datastore/internal/audit/repository"
	auditUCPkg "github.com/fekuna/omnipos-datastore/internal/audit/usecase"
	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

func startTestListener(t *testing.T) (*docstore.Collection, audit.UseCase) {
	t.Helper()
	store, err := docstore.Open(filepath.Join(t.TempDir(), "omnipos.db"), 5000)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	invoices := store.Collection("invoices", "")
	auditUC := auditUCPkg.NewAuditUseCase(auditRepoPkg.NewDocRepository(store), logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go NewSalesListener(invoices, auditUC, logger.NewNop()).Start(ctx)

	// Give the listener a moment to subscribe before the first mutation.
	time.Sleep(50 * time.Millisecond)
	return invoices, auditUC
}

func waitForEntries(t *testing.T, uc audit.UseCase, want int) []model.AuditEntry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := uc.List(context.Background(), docstore.OrderInsertion)
		if err != nil {
			t.Fatalf("audit List: %v", err)
		}
		if len(entries) >= want {
			return entries
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d audit entries, want %d", len(entries), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestListenerRecordsSales(t *testing.T) {
	invoices, auditUC := startTestListener(t)

	_, err := invoices.Put(context.Background(), "inv_1", map[string]any{
		"billNo":     "BILL-000001",
		"grandTotal": 200.0,
		"status":     model.InvoiceStatusPaid,
	}, "")
	if err != nil {
		t.Fatalf("put invoice: %v", err)
	}

	entries := waitForEntries(t, auditUC, 1)
	if entries[0].Action != model.ActionSaleRecorded {
		t.Errorf("action = %q, want sale recorded", entries[0].Action)
	}
	if entries[0].Payload["invoiceId"] != "inv_1" {
		t.Errorf("payload = %+v", entries[0].Payload)
	}
}

func TestListenerRecordsVoids(t *testing.T) {
	invoices, auditUC := startTestListener(t)
	ctx := context.Background()

	rev, err := invoices.Put(ctx, "inv_1", map[string]any{
		"billNo": "BILL-000001",
		"status": model.InvoiceStatusPaid,
	}, "")
	if err != nil {
		t.Fatalf("put invoice: %v", err)
	}

	if _, err := invoices.Put(ctx, "inv_1", map[string]any{
		"billNo":   "BILL-000001",
		"status":   model.InvoiceStatusVoided,
		"voidedBy": "user_w1",
	}, rev); err != nil {
		t.Fatalf("void invoice: %v", err)
	}

	entries := waitForEntries(t, auditUC, 2)
	last := entries[len(entries)-1]
	if last.Action != model.ActionSaleVoided {
		t.Errorf("action = %q, want sale voided", last.Action)
	}
	if last.UserID != "user_w1" {
		t.Errorf("user = %q, want the voiding user", last.UserID)
	}
}
