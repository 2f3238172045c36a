package errors

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type of every error body.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper translates an application error into a problem, reporting false when it does not apply.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes problem documents for gin handlers. Mappers are tried in order;
// an error none of them recognises becomes a 500 whose cause is logged, not returned.
type Responder struct {
	BaseURI string
	Logger  *slog.Logger
	mappers []ErrorMapper
}

// NewResponder builds a responder resolving relative problem types against baseURI.
func NewResponder(baseURI string, mappers ...ErrorMapper) *Responder {
	return &Responder{BaseURI: strings.TrimSuffix(baseURI, "/"), mappers: mappers}
}

// Respond writes the problem with the request path as its instance.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && strings.HasPrefix(problem.Type, "/") {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError maps err and responds. The error is also attached to the gin context.
func (r *Responder) RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.logger().ErrorContext(c.Request.Context(), "unmapped request error",
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	r.Respond(c, ErrInternal.WithDetail("unexpected error"))
}

func (r *Responder) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
