package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Wire names of the writable review fields.
const (
	FieldTitle     = "title"
	FieldSummary   = "summary"
	FieldRating    = "rating"
	FieldIPAddress = "ip_address"
	FieldCompany   = "company"
	FieldReviewer  = "reviewer"
)

const (
	msgRequired   = "This field is required."
	msgNull       = "This field may not be null."
	msgNotString  = "Not a valid string."
	msgNotInteger = "A valid integer is required."
)

// validate is safe for concurrent use and caches parsed tags.
var validate = validator.New()

var (
	titleRule    = fmt.Sprintf("required,max=%d", MaxTitleLen)
	summaryRule  = fmt.Sprintf("required,max=%d", MaxSummaryLen)
	companyRule  = fmt.Sprintf("required,max=%d", MaxCompanyLen)
	reviewerRule = fmt.Sprintf("required,max=%d", MaxReviewerLen)
	ratingRule   = fmt.Sprintf("min=%d,max=%d", MinRating, MaxRating)
	ipRule       = "required,ip"
)

// ValidateReview checks a loosely typed candidate (usually a decoded JSON
// object) against the review constraints. Every field is checked; keys that
// are not writable review fields are ignored.
func ValidateReview(c map[string]any) (ReviewFields, FieldErrors) {
	var (
		f    ReviewFields
		errs FieldErrors
	)
	f.Title = checkString(c, FieldTitle, titleRule, &errs)
	f.Summary = checkString(c, FieldSummary, summaryRule, &errs)
	f.Rating = checkRating(c, &errs)
	f.IPAddress = checkString(c, FieldIPAddress, ipRule, &errs)
	f.Company = checkString(c, FieldCompany, companyRule, &errs)
	f.Reviewer = checkString(c, FieldReviewer, reviewerRule, &errs)
	if errs.Len() > 0 {
		return ReviewFields{}, errs
	}
	return f, nil
}

func checkString(c map[string]any, field, rule string, errs *FieldErrors) string {
	raw, ok := c[field]
	if !ok {
		errs.Add(field, msgRequired)
		return ""
	}
	var s string
	switch v := raw.(type) {
	case nil:
		errs.Add(field, msgNull)
		return ""
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		s = v.String()
	default:
		errs.Add(field, msgNotString)
		return ""
	}
	s = strings.TrimSpace(s)
	if err := validate.Var(s, rule); err != nil {
		errs.Add(field, describe(err))
		return ""
	}
	return s
}

func checkRating(c map[string]any, errs *FieldErrors) int {
	raw, ok := c[FieldRating]
	if !ok {
		errs.Add(FieldRating, msgRequired)
		return 0
	}
	if raw == nil {
		errs.Add(FieldRating, msgNull)
		return 0
	}
	n, ok := toInt(raw)
	if !ok {
		errs.Add(FieldRating, msgNotInteger)
		return 0
	}
	if err := validate.Var(n, ratingRule); err != nil {
		errs.Add(FieldRating, describe(err))
		return 0
	}
	return n
}

// toInt accepts integral JSON numbers and decimal strings such as "3" or "3.0".
func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || math.Abs(t) > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		return toInt(t.String())
	case string:
		s := strings.TrimSpace(t)
		if i := strings.IndexByte(s, '.'); i >= 0 && strings.Trim(s[i+1:], "0") == "" {
			s = s[:i]
		}
		n, err := strconv.Atoi(s)
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid value."
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "This field may not be blank."
	case "ip":
		return "Enter a valid IPv4 or IPv6 address."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	}
	return "Invalid value."
}
