package server

import (
	"net/http"

	"github.com/fekuna/omnipos-datastore/pkg/logger"

	"github.com/fekuna/omnipos-datastore/internal/docstore"
)

// Registrar is anything that can attach its routes to the mux. Each
// feature handler implements it.
type Registrar interface {
	Register(mux *http.ServeMux)
}

// Server owns the HTTP mux and the live change-feed endpoint.
type Server struct {
	mux         *http.ServeMux
	collections map[string]*docstore.Collection
	logger      logger.ZapLogger
}

func New(log logger.ZapLogger, collections map[string]*docstore.Collection, handlers ...Registrar) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		collections: collections,
		logger:      log,
	}
	for _, h := range handlers {
		h.Register(s.mux)
	}
	s.mux.HandleFunc("GET /api/changes/{collection}", s.handleChanges)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }
