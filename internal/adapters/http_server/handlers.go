package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"company_reviews/internal/adapters/observability"
	"company_reviews/internal/app"
	"company_reviews/internal/domain"
)

const defaultMaxBody = 1 << 20

type Handlers struct {
	Svc     *app.ReviewService
	MaxBody int64
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/reviews", h.createReview)
	s.mux.Get("/reviews", h.listReviews)
	s.mux.Get("/reviews/{id}", h.getReview)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe domain.FieldErrors
	switch {
	case errors.As(err, &fe):
		for _, f := range fe.Fields() {
			observability.ObserveValidationFailure(f)
		}
		writeJSON(w, http.StatusBadRequest, fe)
	case errors.Is(err, domain.ErrUnauthenticated):
		writeProblem(w, http.StatusForbidden, "Forbidden", "authentication credentials were not provided")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "you do not have permission to perform this action")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
	default:
		log.Error().Err(err).Str("route", routeOf(r)).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// decodeObject reads exactly one JSON object from the body.
func decodeObject(w http.ResponseWriter, r *http.Request, limit int64) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, err
		}
		return nil, errors.New("body must be a JSON object")
	}
	if payload == nil {
		return nil, errors.New("body must be a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, err
		}
		return nil, errors.New("body must contain a single JSON object")
	}
	return payload, nil
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	caller := UserFrom(r.Context())
	if caller.IsAnonymous() {
		writeError(w, r, domain.ErrUnauthenticated)
		return
	}

	limit := h.MaxBody
	if limit <= 0 {
		limit = defaultMaxBody
	}
	payload, err := decodeObject(w, r, limit)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("body must not exceed %d bytes", tooBig.Limit))
			return
		}
		writeProblem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}

	saved, err := h.Svc.Create(r.Context(), caller, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveReviewCreated()
	w.Header().Set("Location", fmt.Sprintf("/reviews/%d", saved.ID))
	writeJSON(w, http.StatusCreated, app.ToWire(saved))
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Svc.List(r.Context(), UserFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.ToWireList(rs))
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	caller := UserFrom(r.Context())
	if caller.IsAnonymous() {
		writeError(w, r, domain.ErrUnauthenticated)
		return
	}
	// only digit ids name a review, anything else is an unknown resource
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, domain.ErrNotFound)
		return
	}
	rv, err := h.Svc.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.ToWire(rv))
}
