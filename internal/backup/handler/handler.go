package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/fekuna/omnipos-datastore/pkg/apperrors"
	"github.com/fekuna/omnipos-datastore/pkg/logger"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-datastore/internal/backup"
	"github.com/fekuna/omnipos-datastore/internal/server/respond"
)

type BackupHandler struct {
	exporter *backup.Exporter
	importer *backup.Importer
	logger   logger.ZapLogger
}

func NewBackupHandler(exporter *backup.Exporter, importer *backup.Importer, log logger.ZapLogger) *BackupHandler {
	return &BackupHandler{exporter: exporter, importer: importer, logger: log}
}

func (h *BackupHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/backup/export", h.export)
	mux.HandleFunc("POST /api/backup/import", h.importSnapshot)
}

func (h *BackupHandler) export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="omnipos-backup.json"`)
	if err := h.exporter.WriteTo(r.Context(), w); err != nil {
		// Headers are already gone; the truncated body is all we can signal.
		h.logger.Error("backup export failed mid-stream", zap.Error(err))
	}
}

type importResponse struct {
	Restored int `json:"restored"`
	Failed   int `json:"failed"`
}

func (h *BackupHandler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respond.Error(w, fmt.Errorf("read snapshot body: %w", apperrors.ErrInvalidFormat))
		return
	}

	result, err := h.importer.Import(r.Context(), body)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, importResponse{Restored: result.Restored, Failed: result.Failed})
}
