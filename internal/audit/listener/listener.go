package listener

import (
	"context"

	"github.com/fekuna/omnipos-datastore/pkg/logger"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-datastore/internal/audit"
	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
)

// SalesListener tails the invoices change feed and appends an audit entry
// for every committed sale and void, so the audit log captures them even
// when the mutation came in through a restore or a remote replica.
type SalesListener struct {
	invoices *docstore.Collection
	uc       audit.UseCase
	logger   logger.ZapLogger
}

func NewSalesListener(invoices *docstore.Collection, uc audit.UseCase, log logger.ZapLogger) *SalesListener {
	return &SalesListener{
		invoices: invoices,
		uc:       uc,
		logger:   log,
	}
}

func (l *SalesListener) Start(ctx context.Context) {
	l.logger.Info("starting sales audit listener")

	sub, err := l.invoices.Subscribe(ctx, docstore.FromNow)
	if err != nil {
		l.logger.Error("failed to subscribe to invoice changes", zap.Error(err))
		return
	}
	defer l.invoices.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping sales audit listener")
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			l.processEvent(ctx, ev)
		}
	}
}

func (l *SalesListener) processEvent(ctx context.Context, ev docstore.FeedEvent) {
	if ev.Deleted {
		return
	}

	var inv model.Invoice
	if err := model.DecodeFields(ev.Fields, &inv); err != nil {
		l.logger.Error("failed to decode invoice event", zap.String("invoice_id", ev.ID), zap.Error(err))
		return
	}

	action := model.ActionSaleRecorded
	userID := ""
	if inv.Status == model.InvoiceStatusVoided {
		action = model.ActionSaleVoided
		userID = inv.VoidedBy
	}

	payload := map[string]any{
		"invoiceId":  ev.ID,
		"billNo":     inv.BillNo,
		"grandTotal": inv.GrandTotal,
	}
	if _, err := l.uc.Append(ctx, action, userID, payload); err != nil {
		l.logger.Error("failed to append sales audit entry",
			zap.String("invoice_id", ev.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
