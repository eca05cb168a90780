package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"authentiq/internal/domain"
)

const (
	NameMax        = 200
	ProductIDMin   = 3
	ProductIDMax   = 100
	UsernameMax    = 150
	PersonNameMax  = 30
	QueryMax       = 100
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reUsername = regexp.MustCompile(`^[\p{L}\p{N}@.+_-]+$`)
	reID       = regexp.MustCompile(`^[0-9]{1,18}$`)
)

// Product trims the fields and checks them against the product rules.
func Product(in domain.ProductInput) (domain.ProductInput, error) {
	out := domain.ProductInput{
		Name:        strings.TrimSpace(in.Name),
		ProductID:   strings.TrimSpace(in.ProductID),
		Description: strings.TrimSpace(in.Description),
	}
	verr := &domain.ValidationError{}
	switch n := utf8.RuneCountInString(out.Name); {
	case n == 0:
		verr.Add("name", "This field is required.")
	case n > NameMax:
		verr.Add("name", "Ensure this value has at most 200 characters.")
	}
	switch n := utf8.RuneCountInString(out.ProductID); {
	case n == 0:
		verr.Add("product_id", "This field is required.")
	case n < ProductIDMin:
		verr.Add("product_id", "Ensure this value has at least 3 characters.")
	case n > ProductIDMax:
		verr.Add("product_id", "Ensure this value has at most 100 characters.")
	}
	return out, verr.OrNil()
}

// CandidateID trims a verification input. ok is false when nothing is left after trimming.
// The result is never shortened; see FitsProductID.
func CandidateID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

// FitsProductID reports whether s is short enough to be a stored product id.
func FitsProductID(s string) bool {
	return utf8.RuneCountInString(s) <= ProductIDMax
}

// Q normalizes a free-text search query; an empty result means "no filter".
func Q(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > QueryMax {
		s = string([]rune(s)[:QueryMax])
	}
	return s
}

// ID validates a numeric surrogate key from a path parameter.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reID.MatchString(s)
}

func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > UsernameMax {
		return "", false
	}
	return s, reUsername.MatchString(s)
}

// Email validates an optional address; the empty string is accepted.
func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// PersonName validates optional first/last names.
func PersonName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) <= PersonNameMax
}

// PasswordPolicy decides which passwords registration accepts.
// The zero value accepts any non-empty password.
type PasswordPolicy struct {
	MinLength int
}

func (p PasswordPolicy) Check(pw string) (string, bool) {
	if pw == "" {
		return "This field is required.", false
	}
	if p.MinLength > 0 && utf8.RuneCountInString(pw) < p.MinLength {
		return "This password is too short.", false
	}
	return "", true
}
