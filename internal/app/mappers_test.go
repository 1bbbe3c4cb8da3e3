package app_test

import (
	"encoding/json"
	"testing"
	"time"

	"company_reviews/internal/app"
	"company_reviews/internal/domain"
)

func TestToWire_HidesIPAndProjectsOwnerName(t *testing.T) {
	r := domain.Review{
		ID:        7,
		Title:     "My review",
		Summary:   "This is my first review.",
		Rating:    1,
		IPAddress: "127.0.0.1",
		Company:   "Some Company",
		Reviewer:  "Some Reviewer",
		Owner:     domain.User{ID: 1, Username: "john"},
		CreatedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}
	b, err := json.Marshal(app.ToWire(r))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["ip_address"]; ok {
		t.Fatalf("ip_address leaked: %s", b)
	}
	if m["user"] != "john" || m["id"] != float64(7) || m["created_at"] != "2024-05-06T07:08:09Z" {
		t.Fatalf("unexpected body: %s", b)
	}
	for _, k := range []string{"title", "summary", "rating", "company", "reviewer"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing %s in %s", k, b)
		}
	}
}

func TestToWireList_EmptyIsArray(t *testing.T) {
	b, _ := json.Marshal(app.ToWireList(nil))
	if string(b) != "[]" {
		t.Fatalf("got %s", b)
	}
}

func TestFromWire_InjectsOwner(t *testing.T) {
	owner := domain.User{ID: 3, Username: "ann"}
	r, errs := app.FromWire(payload(), owner)
	if errs != nil {
		t.Fatalf("errs: %v", errs)
	}
	if r.Owner != owner || r.ID != 0 || !r.CreatedAt.IsZero() {
		t.Fatalf("unexpected stub: %+v", r)
	}
}

func TestFromWire_ReturnsValidatorErrors(t *testing.T) {
	p := payload()
	delete(p, "company")
	_, errs := app.FromWire(p, domain.User{ID: 3})
	if len(errs["company"]) != 1 || errs.Len() != 1 {
		t.Fatalf("unexpected errs: %v", errs)
	}
}
