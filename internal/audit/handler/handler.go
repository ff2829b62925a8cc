package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-datastore/pkg/logger"

	"github.com/fekuna/omnipos-datastore/internal/audit"
	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/model"
	"github.com/fekuna/omnipos-datastore/internal/server/respond"
)

type AuditHandler struct {
	uc     audit.UseCase
	logger logger.ZapLogger
}

func NewAuditHandler(uc audit.UseCase, log logger.ZapLogger) *AuditHandler {
	return &AuditHandler{uc: uc, logger: log}
}

func (h *AuditHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/audit", h.list)
}

type entryView struct {
	ID string `json:"_id"`
	model.AuditEntry
}

func (h *AuditHandler) list(w http.ResponseWriter, r *http.Request) {
	order := docstore.OrderReverse // newest first
	if r.URL.Query().Get("order") == "asc" {
		order = docstore.OrderInsertion
	}
	entries, err := h.uc.List(r.Context(), order)
	if err != nil {
		respond.Error(w, err)
		return
	}
	views := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entryView{ID: entry.ID, AuditEntry: entry})
	}
	respond.JSON(w, http.StatusOK, views)
}
