package models

import (
	"errors"
	"regexp"
	"strings"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError reports a malformed field in a request.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Labels are lowercase alphanumerics and inner hyphens; at least two labels.
var domainRegex = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// NormalizeEmail trims and lowercases an email and checks it has a local part
// and a well-formed domain.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", NewValidationError("email", "must be a valid email address")
	}
	if strings.ContainsAny(email[:at], "@ \t") {
		return "", NewValidationError("email", "must be a valid email address")
	}
	if _, err := NormalizeDomain(email[at+1:]); err != nil {
		return "", NewValidationError("email", "must use a valid domain")
	}
	return email, nil
}

// NormalizeDomain case-folds a domain and validates its shape.
func NormalizeDomain(domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "@")
	if len(domain) > 253 || !domainRegex.MatchString(domain) {
		return "", NewValidationError("domain", "must be a valid domain name")
	}
	return domain, nil
}

// DomainOf returns the lowercase part of email after the last "@".
func DomainOf(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// HasDomain reports whether email belongs to domain exactly (no subdomains).
func HasDomain(email, domain string) bool {
	return strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(domain))
}
