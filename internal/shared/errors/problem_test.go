package errors

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestWithExtensionDoesNotShareMaps(t *testing.T) {
	base := ErrPaymentRequired.WithExtension("required", 2)
	a := base.WithExtension("balance", 1)
	b := base.WithExtension("balance", 0)

	require.Len(t, base.Extensions, 1)
	require.Equal(t, 1, a.Extensions["balance"])
	require.Equal(t, 0, b.Extensions["balance"])
	require.Nil(t, ErrPaymentRequired.Extensions)
}

func respond(t *testing.T, r *Responder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/things", nil)
	r.RespondError(c, err)

	require.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	var got ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	return w, got
}

func TestResponderUsesFirstMatchingMapper(t *testing.T) {
	r := NewResponder("https://errors.example.com/",
		func(err error) (ProblemDetail, bool) { return ProblemDetail{}, false },
		func(err error) (ProblemDetail, bool) { return ErrConflict.WithDetail("busy"), true },
		func(err error) (ProblemDetail, bool) { return ErrNotFound, true },
	)

	w, got := respond(t, r, http.ErrHandlerTimeout)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "https://errors.example.com"+TypeConflict, got.Type)
	require.Equal(t, "busy", got.Detail)
	require.Equal(t, "/v1/things", got.Instance)
}

func TestResponderPassesProblemsThrough(t *testing.T) {
	w, got := respond(t, NewResponder(""), ErrUnprocessable.WithDetail("zero cost"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, TypeUnprocessable, got.Type)
}

func TestResponderHidesUnmappedErrors(t *testing.T) {
	r := NewResponder("")
	r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	w, got := respond(t, r, errors.New("dial tcp 10.0.0.7:5432: connection refused"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "unexpected error", got.Detail)
	require.NotContains(t, w.Body.String(), "10.0.0.7")
}
