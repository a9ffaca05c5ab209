// This file implements utilities for parsing and validating HTTP request
// data: derived-view query parameters and transaction form fields.

package http

import (
	"net/http"
	"net/url"
	"strings"

	"fintrack/internal/core"
)

// ParseViewParams extracts the derived-view parameters from a query
// string. Unknown or missing values fall back to the defaults, so a
// hand-edited URL can never break the table.
func ParseViewParams(query url.Values) core.View {
	v := core.DefaultView()
	v.Type = core.TypeFilter(strings.TrimSpace(query.Get("type")))
	v.Category = strings.TrimSpace(query.Get("category"))
	if v.Type == "" {
		v.Type = core.TypeAll
	}
	if s := strings.TrimSpace(query.Get("sort")); s != "" {
		v.Key = core.SortKey(s)
		v.Dir = core.Asc
	}
	if d := strings.TrimSpace(query.Get("dir")); d != "" {
		v.Dir = core.SortDir(d)
	}
	return v.Normalize()
}

// ViewQuery renders a view back into query parameters for partial URLs
// and sort-header links.
func ViewQuery(v core.View) string {
	q := url.Values{}
	q.Set("sort", string(v.Key))
	q.Set("dir", string(v.Dir))
	if v.Type != core.TypeAll {
		q.Set("type", string(v.Type))
	}
	if v.Category != "" {
		q.Set("category", v.Category)
	}
	return q.Encode()
}

// ParseDraft extracts the raw transaction form fields. Values are
// sanitized but deliberately not validated; core.ValidateDraft owns the
// validation rules.
func ParseDraft(form url.Values) core.Draft {
	return core.Draft{
		ID:          sanitizeInput(form.Get("id")),
		Description: sanitizeInput(form.Get("description")),
		Amount:      sanitizeInput(form.Get("amount")),
		Type:        sanitizeInput(form.Get("type")),
		Category:    sanitizeInput(form.Get("category")),
		Date:        sanitizeInput(form.Get("date")),
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Malformed request body")
	}
	return nil
}
