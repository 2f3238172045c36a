// Package errors renders failures as RFC 7807 problem documents.
package errors

import (
	"fmt"
	"maps"
	"net/http"
)

// ProblemDetail is an RFC 7807 problem document (https://www.rfc-editor.org/rfc/rfc7807).
// Extra members such as the credits a generation needs travel in Extensions.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

// WithDetail returns a copy carrying an occurrence-specific message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with one more extension member. The receiver's map is never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	maps.Copy(extensions, p.Extensions)
	extensions[key] = value
	p.Extensions = extensions
	return p
}

// Problem type references, relative unless the responder has a base URI.
const (
	TypeBadRequest    = "/problems/bad-request"
	TypeNotFound      = "/problems/not-found"
	TypeConflict      = "/problems/conflict"
	TypeUnprocessable = "/problems/unprocessable-entity"
	TypePayment       = "/problems/insufficient-credits"
	TypeUpstream      = "/problems/upstream-rejected"
	TypeUnavailable   = "/problems/service-unavailable"
	TypeInternal      = "/problems/internal-error"
)

var (
	ErrBadRequest = ProblemDetail{Type: TypeBadRequest, Title: "Bad Request", Status: http.StatusBadRequest}
	ErrNotFound   = ProblemDetail{Type: TypeNotFound, Title: "Resource Not Found", Status: http.StatusNotFound}
	// ErrConflict covers wizard guard violations, a generation already in flight and reused idempotency keys.
	ErrConflict      = ProblemDetail{Type: TypeConflict, Title: "Conflict", Status: http.StatusConflict}
	ErrUnprocessable = ProblemDetail{Type: TypeUnprocessable, Title: "Unprocessable Entity", Status: http.StatusUnprocessableEntity}

	// ErrPaymentRequired is raised before any upstream call when the balance cannot cover a generation.
	ErrPaymentRequired = ProblemDetail{Type: TypePayment, Title: "Insufficient Credits", Status: http.StatusPaymentRequired}
	// ErrBadGateway carries the platform's own rejection message in Detail.
	ErrBadGateway = ProblemDetail{Type: TypeUpstream, Title: "Upstream Rejected Request", Status: http.StatusBadGateway}
	// ErrServiceUnavailable hides network and decode failures behind a generic message.
	ErrServiceUnavailable = ProblemDetail{Type: TypeUnavailable, Title: "Service Unavailable", Status: http.StatusServiceUnavailable}

	ErrInternal = ProblemDetail{Type: TypeInternal, Title: "Internal Server Error", Status: http.StatusInternalServerError}
)
