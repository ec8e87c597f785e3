package api

import (
	"io"
	"net/http"

	"github.com/donutnomad/gormskipper/lib/skipper"
	"github.com/donutnomad/gormskipper/lib/skipper/repo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

// newModel is a pointer to a generated creation type.
type newModel[N any] interface {
	*N
	skipper.Model
}

// Mount registers the collection, create, get and delete routes of M under path.
// N is the creation type decoded from POST bodies and P the recognized query parameters.
func Mount[M skipper.Resource[ID], ID any, N any, PN newModel[N], P skipper.QueryParams](
	r chi.Router, path string, s *Server, parse func(string) (ID, error),
) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", Collection[M, P](s))
		r.Post("/", Create[M, ID, N, PN](s))
		r.Get("/{id}", Get[M](s, parse))
		r.Delete("/{id}", Delete[M](s, parse))
	})
}

// Collection GET /cakes?name=...
func Collection[M any, P skipper.QueryParams](s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := skipper.FromQueryString[P](r.URL.Query())
		list, err := repo.FindAll[M](r.Context(), s.db, filter.Expression())
		if err != nil {
			s.fail(w, r, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// Create POST /cakes, the body is decoded as N and any id in it is ignored.
func Create[M skipper.Resource[ID], ID any, N any, PN newModel[N]](s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
		data := PN(new(N))
		if err := decodeJSON(body, data); err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}

		created, err := repo.Create[M](r.Context(), s.db, data)
		if err != nil {
			if repo.IsDuplicateKey(err) {
				s.onDuplicate(w, r, Duplicate{Err: err, Identical: identical[M](s, data)})
				return
			}
			s.fail(w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Location", created.Location())
		writeJSON(w, http.StatusCreated, created)
	}
}

// Get GET /cakes/{id}
func Get[M skipper.Resource[ID], ID any](s *Server, parse func(string) (ID, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parse(chi.URLParam(r, "id"))
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
		found, err := repo.FindByID[M](r.Context(), s.db, id)
		if err != nil {
			s.fail(w, r, http.StatusInternalServerError, err)
			return
		}
		m, ok := found.Get()
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// Delete DELETE /cakes/{id}
func Delete[M skipper.Resource[ID], ID any](s *Server, parse func(string) (ID, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parse(chi.URLParam(r, "id"))
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
		rows, err := repo.DeleteByID[M](r.Context(), s.db, id)
		if err != nil {
			s.fail(w, r, http.StatusInternalServerError, err)
			return
		}
		if rows == 0 {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}
