package api

import (
	"context"
	"net/http"

	"github.com/donutnomad/gormskipper/lib/moExt"
	"github.com/donutnomad/gormskipper/lib/skipper"
	"github.com/donutnomad/gormskipper/lib/skipper/repo"
	"github.com/samber/mo"
)

// Duplicate is a create rejected by a unique constraint.
type Duplicate struct {
	Err error
	// Identical finds a stored record equal to the submitted one on every
	// non-identity column.
	Identical func(ctx context.Context) (mo.Option[skipper.Location], error)
}

// Outcome 重复提交时的响应
type Outcome struct {
	Status   int
	Location string // 仅用于重定向
}

// DuplicatePolicy decides the response to a Duplicate. A returned error is
// answered with 500.
type DuplicatePolicy func(ctx context.Context, dup Duplicate) (Outcome, error)

// InternalErrorOnDuplicate treats a duplicate like any other storage failure.
func InternalErrorOnDuplicate(_ context.Context, dup Duplicate) (Outcome, error) {
	return Outcome{}, dup.Err
}

// SeeOtherWhenIdentical redirects to the stored record when the submission
// repeats it exactly, and answers 409 when it only collides on a unique column.
func SeeOtherWhenIdentical(ctx context.Context, dup Duplicate) (Outcome, error) {
	found, err := dup.Identical(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if loc, ok := found.Get(); ok {
		return Outcome{Status: http.StatusSeeOther, Location: loc.Location()}, nil
	}
	return Outcome{Status: http.StatusConflict}, nil
}

func identical[M skipper.Location](s *Server, data skipper.Model) func(ctx context.Context) (mo.Option[skipper.Location], error) {
	return func(ctx context.Context) (mo.Option[skipper.Location], error) {
		p := skipper.AllCondition(data)
		if mc, ok := data.(skipper.ModelCondition); ok {
			p = mc.ToAllCondition()
		}
		found, err := repo.FindOne[M](ctx, s.db, p)
		if err != nil {
			return mo.None[skipper.Location](), err
		}
		return moExt.Map(found, func(m M) skipper.Location { return m }), nil
	}
}

func (s *Server) onDuplicate(w http.ResponseWriter, r *http.Request, dup Duplicate) {
	outcome, err := s.duplicate(r.Context(), dup)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if outcome.Location != "" {
		w.Header().Set("Location", outcome.Location)
	}
	if outcome.Status >= http.StatusBadRequest {
		writeError(w, outcome.Status, http.StatusText(outcome.Status))
		return
	}
	w.WriteHeader(outcome.Status)
}
