package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/meatupclub/meatup/internal/application"
)

const maxRequestBody = 1 << 20

// decodeJSON reads a JSON object into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// parseID parses a positive integer identifier, reporting failures against field.
func parseID(field, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, application.NewValidationError(field, field+" is required")
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, application.NewValidationError(field, field+" must be a positive integer")
	}
	return id, nil
}

// optionalID parses value when present and returns nil otherwise.
func optionalID(field, value string) (*int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := parseID(field, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// flexibleID accepts an identifier sent either as a JSON number or a string.
type flexibleID struct {
	set bool
	raw string
}

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		return nil
	}
	f.set = true
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	f.raw = text
	return nil
}

// ptr returns the identifier, or nil when the field was omitted. Values that
// are not positive integers become a validation error for field.
func (f flexibleID) ptr(field string) (*int64, error) {
	if !f.set {
		return nil, nil
	}
	id, err := parseID(field, f.raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// required returns the identifier or a validation error for field.
func (f flexibleID) required(field string) (int64, error) {
	if !f.set {
		return 0, application.NewValidationError(field, field+" is required")
	}
	return parseID(field, f.raw)
}

func principalOf(r *http.Request) application.Principal {
	principal, _ := PrincipalFromContext(r.Context())
	return principal
}
