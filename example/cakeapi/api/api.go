// Package api serves the cakeapi REST endpoints.
package api

import (
	"net/http"
	"strconv"

	"github.com/donutnomad/gormskipper/example/cakeapi/entity"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	db        *gorm.DB
	log       *zap.Logger
	duplicate DuplicatePolicy
}

type Option func(*Server)

// WithDuplicatePolicy replaces the response policy for creates that hit a
// unique constraint. The default answers 500.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(s *Server) {
		s.duplicate = p
	}
}

func New(db *gorm.DB, log *zap.Logger, opts ...Option) *Server {
	s := &Server{db: db, log: log, duplicate: InternalErrorOnDuplicate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router 注册全部路由
func (s *Server) Router() http.Handler {
	r := chi.NewMux()
	r.Use(
		RequestLogger(s.log),
		middleware.Recoverer,
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/openapi.json", s.openAPI)

	Mount[entity.Cake, int64, entity.CakeNewModel, *entity.CakeNewModel, entity.CakeQueryParams](r, "/cakes", s, ParseInt64)
	return r
}

func ParseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
