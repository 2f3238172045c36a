package portraitserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	custapp "github.com/Apurer/portrait-customizer/internal/domains/customization/application"
	promptsapp "github.com/Apurer/portrait-customizer/internal/domains/prompts/application"
	promptsports "github.com/Apurer/portrait-customizer/internal/domains/prompts/ports"
	apierrors "github.com/Apurer/portrait-customizer/internal/shared/errors"
)

var responder = apierrors.NewResponder("", customizationProblem, promptsProblem)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondBadRequest reports a malformed payload or path parameter.
func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

// respondServiceError maps application errors to RFC 7807 responses.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func customizationProblem(err error) (apierrors.ProblemDetail, bool) {
	var insufficient *custapp.InsufficientCreditsError
	if errors.As(err, &insufficient) {
		problem := apierrors.ErrPaymentRequired.
			WithDetail(insufficient.Error()).
			WithExtension("required", insufficient.Required).
			WithExtension("balance", insufficient.Balance)
		if insufficient.PurchaseURL != "" {
			problem = problem.WithExtension("purchaseUrl", insufficient.PurchaseURL)
		}
		return problem, true
	}
	var failed *custapp.GenerationFailedError
	if errors.As(err, &failed) {
		return apierrors.ErrBadGateway.WithDetail(failed.Error()), true
	}
	switch {
	case errors.Is(err, custapp.ErrSessionNotFound), errors.Is(err, custapp.ErrGenerationNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, custapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, custapp.ErrInvalidTransition),
		errors.Is(err, custapp.ErrGenerationInProgress),
		errors.Is(err, custapp.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, custapp.ErrZeroCostGeneration):
		return apierrors.ErrUnprocessable.WithDetail(err.Error()), true
	case errors.Is(err, custapp.ErrUpstreamUnavailable):
		return apierrors.ErrServiceUnavailable.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func promptsProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, promptsports.ErrTemplateNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, promptsapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
