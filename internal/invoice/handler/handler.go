package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-datastore/pkg/logger"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/invoice"
	"github.com/fekuna/omnipos-datastore/internal/invoice/dto"
	"github.com/fekuna/omnipos-datastore/internal/model"
	"github.com/fekuna/omnipos-datastore/internal/server/respond"
)

type InvoiceHandler struct {
	uc     invoice.UseCase
	logger logger.ZapLogger
}

func NewInvoiceHandler(uc invoice.UseCase, log logger.ZapLogger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, logger: log}
}

func (h *InvoiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/invoices", h.list)
	mux.HandleFunc("GET /api/invoices/{id}", h.get)
	mux.HandleFunc("POST /api/invoices", h.commitSale)
	mux.HandleFunc("POST /api/invoices/{id}/void", h.void)
	mux.HandleFunc("GET /api/shift/summary", h.shiftSummary)
}

type invoiceView struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev"`
	model.Invoice
}

func viewInvoice(inv *model.Invoice) invoiceView {
	return invoiceView{ID: inv.ID, Rev: inv.Revision.String(), Invoice: *inv}
}

type adjustmentView struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	Error     string `json:"error,omitempty"`
}

type commitSaleResponse struct {
	Invoice     invoiceView      `json:"invoice"`
	Adjustments []adjustmentView `json:"adjustments"`
}

func (h *InvoiceHandler) commitSale(w http.ResponseWriter, r *http.Request) {
	var input dto.CommitSaleInput
	if err := respond.Decode(r, &input); err != nil {
		respond.Error(w, err)
		return
	}

	inv, adjustments, err := h.uc.CommitSale(r.Context(), &input)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := commitSaleResponse{Invoice: viewInvoice(inv)}
	for _, adj := range adjustments {
		av := adjustmentView{ProductID: adj.ProductID, Qty: adj.Qty}
		if adj.Err != nil {
			av.Error = adj.Err.Error()
		}
		resp.Adjustments = append(resp.Adjustments, av)
	}
	respond.JSON(w, http.StatusCreated, resp)
}

func (h *InvoiceHandler) void(w http.ResponseWriter, r *http.Request) {
	var p struct {
		UserID string `json:"userId"`
	}
	if err := respond.Decode(r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	inv, err := h.uc.VoidInvoice(r.Context(), r.PathValue("id"), p.UserID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, viewInvoice(inv))
}

func (h *InvoiceHandler) get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.uc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, viewInvoice(inv))
}

func (h *InvoiceHandler) list(w http.ResponseWriter, r *http.Request) {
	order := docstore.OrderReverse // sales history defaults to newest first
	if r.URL.Query().Get("order") == "asc" {
		order = docstore.OrderInsertion
	}
	invoices, err := h.uc.List(r.Context(), order)
	if err != nil {
		respond.Error(w, err)
		return
	}
	views := make([]invoiceView, 0, len(invoices))
	for i := range invoices {
		views = append(views, viewInvoice(&invoices[i]))
	}
	respond.JSON(w, http.StatusOK, views)
}

func (h *InvoiceHandler) shiftSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.uc.ShiftSummary(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, summary)
}
