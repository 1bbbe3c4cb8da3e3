package reviewsapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"company_reviews/internal/adapters/reviewsapi"
	"company_reviews/internal/domain"
)

func newClient(t *testing.T, h http.HandlerFunc) *reviewsapi.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	cl, err := reviewsapi.New(ts.URL+"/", "tok-john", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestClient_GetReview_RetriesThenSuccess(t *testing.T) {
	var hits int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-john" || r.URL.Path != "/reviews/7" {
			t.Errorf("unexpected request %s %s", r.Header.Get("Authorization"), r.URL.Path)
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.WriteHeader(503)
		case 2:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(429)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "user": "john"})
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.GetReview(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ID != 7 || got.User != "john" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls, got %d", hits)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	for status, want := range map[int]error{
		http.StatusNotFound:     domain.ErrNotFound,
		http.StatusForbidden:    domain.ErrForbidden,
		http.StatusUnauthorized: domain.ErrForbidden,
	} {
		cl := newClient(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) })
		if _, err := cl.GetReview(context.Background(), 1); !errors.Is(err, want) {
			t.Fatalf("%d: expected %v, got %v", status, want, err)
		}
	}
}

func TestClient_CreateReview_FieldErrors(t *testing.T) {
	var hits int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"rating":["Ensure this value is less than or equal to 5."]}`))
	})
	_, err := cl.CreateReview(context.Background(), map[string]any{"rating": 9})
	var fe domain.FieldErrors
	if !errors.As(err, &fe) || len(fe["rating"]) != 1 {
		t.Fatalf("expected rating field error, got %v", err)
	}
	if hits != 1 {
		t.Fatalf("rejected payload must not be retried, hits=%d", hits)
	}
}

func TestClient_CreateReview_NotRetriedOn5xx(t *testing.T) {
	var hits int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := cl.CreateReview(context.Background(), map[string]any{"title": "x"}); err == nil {
		t.Fatalf("expected error")
	}
	if hits != 1 {
		t.Fatalf("POST replayed after 500, hits=%d", hits)
	}
}

func TestClient_CreateReview_RetriedOn429(t *testing.T) {
	var hits int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"title":"x","user":"john"}`))
	})
	got, err := cl.CreateReview(context.Background(), map[string]any{"title": "x"})
	if err != nil || got.ID != 1 {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestClient_ListReviews_ContextCanceled(t *testing.T) {
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := cl.ListReviews(ctx); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNew_RequiresToken(t *testing.T) {
	if _, err := reviewsapi.New("http://localhost", "", 1); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
