package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-datastore/pkg/logger"

	"github.com/fekuna/omnipos-datastore/internal/invoice"
	"github.com/fekuna/omnipos-datastore/internal/model"
	"github.com/fekuna/omnipos-datastore/internal/server/respond"
	"github.com/fekuna/omnipos-datastore/internal/user"
)

type UserHandler struct {
	uc       user.UseCase
	invoices invoice.UseCase
	logger   logger.ZapLogger
}

func NewUserHandler(uc user.UseCase, invoices invoice.UseCase, log logger.ZapLogger) *UserHandler {
	return &UserHandler{uc: uc, invoices: invoices, logger: log}
}

func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.list)
	mux.HandleFunc("POST /api/users", h.add)
	mux.HandleFunc("DELETE /api/users/{id}", h.delete)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/logout", h.logout)
	mux.HandleFunc("POST /api/shift/close", h.closeShift)
}

// userView never exposes the PIN back to callers.
type userView struct {
	ID       string `json:"_id"`
	Rev      string `json:"_rev"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

func viewUser(u *model.User) userView {
	return userView{
		ID:       u.ID,
		Rev:      u.Revision.String(),
		Username: u.Username,
		Role:     u.Role,
		Name:     u.Name,
	}
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.uc.List(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, viewUser(&users[i]))
	}
	respond.JSON(w, http.StatusOK, views)
}

func (h *UserHandler) add(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Username string `json:"username"`
		PIN      string `json:"pin"`
		Role     string `json:"role"`
		Name     string `json:"name"`
	}
	if err := respond.Decode(r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	created, err := h.uc.AddUser(r.Context(), &model.User{
		Username: p.Username,
		PIN:      p.PIN,
		Role:     p.Role,
		Name:     p.Name,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, viewUser(created))
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	u, err := h.uc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.uc.DeleteUser(r.Context(), u); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Username string `json:"username"`
		PIN      string `json:"pin"`
	}
	if err := respond.Decode(r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	u, err := h.uc.Authenticate(r.Context(), p.Username, p.PIN)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, viewUser(u))
}

func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	var p struct {
		UserID string `json:"userId"`
	}
	if err := respond.Decode(r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.uc.Logout(r.Context(), p.UserID); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) closeShift(w http.ResponseWriter, r *http.Request) {
	var p struct {
		UserID string `json:"userId"`
	}
	if err := respond.Decode(r, &p); err != nil {
		respond.Error(w, err)
		return
	}
	summary, err := h.invoices.ShiftSummary(r.Context(), p.UserID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.uc.CloseShift(r.Context(), p.UserID, summary); err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, summary)
}
