package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-datastore/pkg/logger"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/inventory"
	"github.com/fekuna/omnipos-datastore/internal/model"
	"github.com/fekuna/omnipos-datastore/internal/server/respond"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

func (h *InventoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/inventory", h.list)
	mux.HandleFunc("POST /api/inventory", h.add)
	mux.HandleFunc("PUT /api/inventory/{id}", h.update)
	mux.HandleFunc("DELETE /api/inventory/{id}", h.delete)
	mux.HandleFunc("POST /api/inventory/{id}/adjust", h.adjust)
	mux.HandleFunc("GET /api/inventory/code/{code}", h.findByCode)
}

type itemPayload struct {
	ID     string  `json:"_id"`
	Rev    string  `json:"_rev"`
	Name   string  `json:"name"`
	Code   string  `json:"code"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
	Active bool    `json:"active"`
}

type itemView struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev"`
	model.InventoryItem
}

func viewItem(item *model.InventoryItem) itemView {
	return itemView{ID: item.ID, Rev: item.Revision.String(), InventoryItem: *item}
}

func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	order := docstore.OrderInsertion
	if r.URL.Query().Get("order") == "desc" {
		order = docstore.OrderReverse
	}
	items, err := h.uc.List(r.Context(), order)
	if err != nil {
		respond.Error(w, err)
		return
	}
	views := make([]itemView, 0, len(items))
	for i := range items {
		views = append(views, viewItem(&items[i]))
	}
	respond.JSON(w, http.StatusOK, views)
}

func (h *InventoryHandler) add(w http.ResponseWriter, r *http.Request) {
	var p itemPayload
	if err := respond.Decode(r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	item := &model.InventoryItem{
		ID:    p.ID,
		Name:  p.Name,
		Code:  p.Code,
		Price: p.Price,
		Stock: p.Stock,
	}
	created, err := h.uc.AddItem(r.Context(), item)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, viewItem(created))
}

func (h *InventoryHandler) update(w http.ResponseWriter, r *http.Request) {
	var p itemPayload
	if err := respond.Decode(r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	item := &model.InventoryItem{
		ID:       r.PathValue("id"),
		Revision: model.Revision(p.Rev),
		Name:     p.Name,
		Code:     p.Code,
		Price:    p.Price,
		Stock:    p.Stock,
		Active:   p.Active,
	}
	updated, err := h.uc.UpdateItem(r.Context(), item)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, viewItem(updated))
}

func (h *InventoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	item := &model.InventoryItem{
		ID:       r.PathValue("id"),
		Revision: model.Revision(r.URL.Query().Get("rev")),
	}
	if err := h.uc.DeleteItem(r.Context(), item); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Delta int `json:"delta"`
	}
	if err := respond.Decode(r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	item, err := h.uc.AdjustStock(r.Context(), r.PathValue("id"), p.Delta)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, viewItem(item))
}

func (h *InventoryHandler) findByCode(w http.ResponseWriter, r *http.Request) {
	item, err := h.uc.FindByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, viewItem(item))
}
