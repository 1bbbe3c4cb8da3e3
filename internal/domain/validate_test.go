package domain_test

import (
	"strings"
	"testing"

	"company_reviews/internal/domain"
)

func validPayload() map[string]any {
	return map[string]any{
		"title":      "My review",
		"summary":    "This is my first review.",
		"rating":     float64(1),
		"ip_address": "127.0.0.1",
		"company":    "Some Company",
		"reviewer":   "Some Reviewer",
	}
}

func TestValidateReview_OK(t *testing.T) {
	f, errs := domain.ValidateReview(validPayload())
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := domain.ReviewFields{
		Title:     "My review",
		Summary:   "This is my first review.",
		Rating:    1,
		IPAddress: "127.0.0.1",
		Company:   "Some Company",
		Reviewer:  "Some Reviewer",
	}
	if f != want {
		t.Fatalf("got %+v, want %+v", f, want)
	}
}

func TestValidateReview_IgnoresUnknownFields(t *testing.T) {
	p := validPayload()
	p["id"] = 99
	p["user"] = "mallory"
	p["something_else"] = []any{1, 2}
	if _, errs := domain.ValidateReview(p); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidateReview_Lengths(t *testing.T) {
	cases := []struct {
		field string
		max   int
	}{
		{"title", domain.MaxTitleLen},
		{"summary", domain.MaxSummaryLen},
		{"company", domain.MaxCompanyLen},
		{"reviewer", domain.MaxReviewerLen},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			p := validPayload()
			p[tc.field] = strings.Repeat("a", tc.max)
			if _, errs := domain.ValidateReview(p); errs != nil {
				t.Fatalf("value at the bound rejected: %v", errs)
			}

			p[tc.field] = strings.Repeat("a", tc.max+1)
			_, errs := domain.ValidateReview(p)
			if len(errs[tc.field]) != 1 {
				t.Fatalf("expected one %s error, got %v", tc.field, errs)
			}
			if errs.Len() != 1 {
				t.Fatalf("only %s should fail, got %v", tc.field, errs.Fields())
			}
		})
	}
}

func TestValidateReview_LengthCountsCharactersNotBytes(t *testing.T) {
	p := validPayload()
	p["company"] = strings.Repeat("é", domain.MaxCompanyLen) // 48 bytes
	if _, errs := domain.ValidateReview(p); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidateReview_Rating(t *testing.T) {
	cases := []struct {
		name  string
		value any
		ok    bool
	}{
		{"zero", float64(0), true},
		{"five", float64(5), true},
		{"numeric string", "3", true},
		{"integral float string", "4.0", true},
		{"negative", float64(-1), false},
		{"six", float64(6), false},
		{"fraction", 2.5, false},
		{"word", "three", false},
		{"bool", true, false},
		{"null", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			p["rating"] = tc.value
			_, errs := domain.ValidateReview(p)
			if tc.ok && errs != nil {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if !tc.ok && len(errs["rating"]) == 0 {
				t.Fatalf("expected rating error, got %v", errs)
			}
		})
	}
}

func TestValidateReview_RatingMessages(t *testing.T) {
	p := validPayload()
	p["rating"] = float64(6)
	_, errs := domain.ValidateReview(p)
	if got := errs["rating"][0]; got != "Ensure this value is less than or equal to 5." {
		t.Fatalf("unexpected message %q", got)
	}
	p["rating"] = float64(-1)
	_, errs = domain.ValidateReview(p)
	if got := errs["rating"][0]; got != "Ensure this value is greater than or equal to 0." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestValidateReview_IPAddress(t *testing.T) {
	good := []string{"127.0.0.1", "10.1.2.3", "::1", "2001:db8::ff00:42:8329", "::ffff:192.0.2.1"}
	bad := []string{"127,0,0,1", "256.1.1.1", "localhost", "1.2.3", "", "fe80::1%eth0"}
	for _, ip := range good {
		p := validPayload()
		p["ip_address"] = ip
		if _, errs := domain.ValidateReview(p); errs != nil {
			t.Fatalf("%q rejected: %v", ip, errs)
		}
	}
	for _, ip := range bad {
		p := validPayload()
		p["ip_address"] = ip
		_, errs := domain.ValidateReview(p)
		if len(errs["ip_address"]) == 0 {
			t.Fatalf("%q accepted", ip)
		}
	}
}

func TestValidateReview_AccumulatesEveryField(t *testing.T) {
	p := map[string]any{
		"title":      strings.Repeat("t", 65),
		"summary":    "",
		"rating":     float64(7),
		"ip_address": "127,0,0,1",
		"company":    false,
	}
	_, errs := domain.ValidateReview(p)
	want := []string{"company", "ip_address", "rating", "reviewer", "summary", "title"}
	got := errs.Fields()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for _, f := range want {
		if len(errs[f]) == 0 || errs[f][0] == "" {
			t.Fatalf("field %s has no message", f)
		}
	}
	if errs["reviewer"][0] != "This field is required." {
		t.Fatalf("missing field message: %q", errs["reviewer"][0])
	}
	if errs["company"][0] != "Not a valid string." {
		t.Fatalf("wrong type message: %q", errs["company"][0])
	}
}

func TestValidateReview_TrimsWhitespace(t *testing.T) {
	p := validPayload()
	p["title"] = "  padded  "
	p["reviewer"] = "   "
	f, errs := domain.ValidateReview(p)
	if errs["reviewer"] == nil || errs["reviewer"][0] != "This field may not be blank." {
		t.Fatalf("blank reviewer accepted: %v", errs)
	}
	p["reviewer"] = "Rev"
	f, errs = domain.ValidateReview(p)
	if errs != nil || f.Title != "padded" {
		t.Fatalf("got %+v, %v", f, errs)
	}
}
