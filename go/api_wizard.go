package portraitserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	custmapper "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/http/mapper"
	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	custports "github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

// IdempotencyKeyHeader carries the client's retry key for generation submissions.
const IdempotencyKeyHeader = "Idempotency-Key"

var errMissingSessionID = errors.New("sessionId path parameter is required")

// WizardAPI wires HTTP transport with the customization wizard service.
type WizardAPI struct {
	service custports.Service
}

// NewWizardAPI creates a WizardAPI backed by the provided service.
func NewWizardAPI(service custports.Service) WizardAPI {
	return WizardAPI{service: service}
}

// Post /v1/wizard/sessions
// Opens a customization wizard for an existing portrait
func (api *WizardAPI) OpenSession(c *gin.Context) {
	var payload custmapper.OpenSession
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input, err := custmapper.ToOpenSessionInput(payload, bearerToken(c))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	view, err := api.service.OpenSession(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, custmapper.FromSessionView(view))
}

// Get /v1/wizard/sessions/:sessionId
// Returns the current wizard state
func (api *WizardAPI) GetSession(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}
	view, err := api.service.GetSession(c.Request.Context(), custtypes.SessionIdentifier{SessionID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, custmapper.FromSessionView(view))
}

// Delete /v1/wizard/sessions/:sessionId
// Closes the wizard and abandons background work
func (api *WizardAPI) CloseSession(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}
	if err := api.service.CloseSession(c.Request.Context(), custtypes.SessionIdentifier{SessionID: id}); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Put /v1/wizard/sessions/:sessionId/breed
// Keeps the current breed or picks a new one
func (api *WizardAPI) ChooseBreed(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}
	var payload custmapper.BreedChoice
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input, err := custmapper.ToChooseBreedInput(id, payload)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	view, err := api.service.ChooseBreed(c.Request.Context(), input)
	api.respondView(c, view, err)
}

// Put /v1/wizard/sessions/:sessionId/coat
// Keeps the current coat or picks a compatible one
func (api *WizardAPI) ChooseCoat(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}
	var payload custmapper.CoatChoice
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input, err := custmapper.ToChooseCoatInput(id, payload)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	view, err := api.service.ChooseCoat(c.Request.Context(), input)
	api.respondView(c, view, err)
}

// Put /v1/wizard/sessions/:sessionId/outfit
// Applies an outfit
func (api *WizardAPI) ChooseOutfit(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}
	var payload custmapper.OutfitChoice
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := custtypes.ChooseOutfitInput{SessionID: id, OutfitID: strings.TrimSpace(payload.OutfitID)}
	view, err := api.service.ChooseOutfit(c.Request.Context(), input)
	api.respondView(c, view, err)
}

// Delete /v1/wizard/sessions/:sessionId/outfit
// Removes the applied outfit
func (api *WizardAPI) ClearOutfit(c *gin.Context) {
	api.sessionAction(c, api.service.ClearOutfit)
}

// Post /v1/wizard/sessions/:sessionId/next
func (api *WizardAPI) Next(c *gin.Context) {
	api.sessionAction(c, api.service.Next)
}

// Post /v1/wizard/sessions/:sessionId/back
func (api *WizardAPI) Back(c *gin.Context) {
	api.sessionAction(c, api.service.Back)
}

// Post /v1/wizard/sessions/:sessionId/skip
// Skips outfit selection and moves to the preview
func (api *WizardAPI) SkipOutfit(c *gin.Context) {
	api.sessionAction(c, api.service.SkipOutfit)
}

// Get /v1/wizard/sessions/:sessionId/quote
// Returns the credit cost of the current selection
func (api *WizardAPI) Quote(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}
	quote, err := api.service.Quote(c.Request.Context(), custtypes.SessionIdentifier{SessionID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, custmapper.FromQuoteView(*quote))
}

// Post /v1/wizard/sessions/:sessionId/generate
// Submits the previewed selection for generation
func (api *WizardAPI) Generate(c *gin.Context) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}
	input := custtypes.GenerateInput{
		SessionID:      id,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)),
	}
	result, err := api.service.Generate(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, custmapper.FromGenerateResult(result))
}

type sessionOperation func(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error)

func (api *WizardAPI) sessionAction(c *gin.Context, op sessionOperation) {
	id, ok := sessionParam(c)
	if !ok {
		return
	}
	view, err := op(c.Request.Context(), custtypes.SessionIdentifier{SessionID: id})
	api.respondView(c, view, err)
}

func (api *WizardAPI) respondView(c *gin.Context, view *custtypes.SessionView, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, custmapper.FromSessionView(view))
}

func sessionParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("sessionId"))
	if id == "" {
		respondBadRequest(c, errMissingSessionID)
		return "", false
	}
	return id, true
}

// bearerToken extracts the customer token forwarded to the platform. Absent tokens are allowed.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
