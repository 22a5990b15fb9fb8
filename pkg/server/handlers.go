package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/beeswarm/pkg/buildinfo"
	"github.com/matzehuels/beeswarm/pkg/cache"
	"github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/observability"
	"github.com/matzehuels/beeswarm/pkg/pipeline"
	"github.com/matzehuels/beeswarm/pkg/store"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	opts := req.options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	tbl, err := s.runner.Load(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, hit, err := s.runner.LayoutWithCacheInfo(ctx, tbl, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hash, err := cache.HashJSON(tbl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec := &store.Record{DatasetHash: hash, Options: opts.LayoutKeyOpts(), Layout: l}
	if err := s.store.Save(ctx, rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/layouts/"+rec.ID)
	s.writeJSON(w, http.StatusCreated, LayoutResponse{Record: *rec, Cached: hit})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, LayoutResponse{Record: *rec})
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	var (
		artifacts map[string][]byte
		opts      pipeline.Options
		err       error
	)
	if req.LayoutID != "" {
		var rec *store.Record
		if rec, err = s.store.Get(ctx, req.LayoutID); err != nil {
			s.writeError(w, r, err)
			return
		}
		req.apply(&opts)
		artifacts, err = s.runner.Render(ctx, rec.Layout, opts)
	} else {
		opts = req.Layout.options()
		req.apply(&opts)
		var res *pipeline.Result
		if res, err = s.runner.Execute(ctx, opts); err == nil {
			artifacts = res.Artifacts
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
			}
			s.writeErrorBody(w, r, http.StatusBadRequest, ErrorBody{
				Code:    string(errors.ErrCodeInvalidInput),
				Message: "request validation failed",
				Fields:  fields,
			})
			return false
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		s.logger.Error("request failed", "err", err, "request_id", RequestID(r.Context()))
		msg = "internal error"
	}
	s.writeErrorBody(w, r, status, ErrorBody{Code: string(code), Message: msg})
}

func (s *Server) writeErrorBody(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	s.writeJSON(w, status, ErrorResponse{Error: body, RequestID: RequestID(r.Context())})
}
