package portraitserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers served by the router.
type ApiHandleFunctions struct {
	// Routes for the WizardAPI part of the API
	WizardAPI WizardAPI
	// Routes for the GenerationsAPI part of the API
	GenerationsAPI GenerationsAPI
	// Routes for the PromptsAPI part of the API
	PromptsAPI PromptsAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine. Middleware must be
// installed on the engine before calling it.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	var prompts gin.HandlerFunc
	var templates gin.HandlerFunc
	if handleFunctions.PromptsAPI.prompts != nil {
		prompts = handleFunctions.PromptsAPI.RenderPrompt
		templates = handleFunctions.PromptsAPI.ListTemplates
	}
	return []Route{
		{
			"Healthz",
			http.MethodGet,
			"/healthz",
			Healthz,
		},
		{
			"OpenSession",
			http.MethodPost,
			"/v1/wizard/sessions",
			handleFunctions.WizardAPI.OpenSession,
		},
		{
			"GetSession",
			http.MethodGet,
			"/v1/wizard/sessions/:sessionId",
			handleFunctions.WizardAPI.GetSession,
		},
		{
			"CloseSession",
			http.MethodDelete,
			"/v1/wizard/sessions/:sessionId",
			handleFunctions.WizardAPI.CloseSession,
		},
		{
			"ChooseBreed",
			http.MethodPut,
			"/v1/wizard/sessions/:sessionId/breed",
			handleFunctions.WizardAPI.ChooseBreed,
		},
		{
			"ChooseCoat",
			http.MethodPut,
			"/v1/wizard/sessions/:sessionId/coat",
			handleFunctions.WizardAPI.ChooseCoat,
		},
		{
			"ChooseOutfit",
			http.MethodPut,
			"/v1/wizard/sessions/:sessionId/outfit",
			handleFunctions.WizardAPI.ChooseOutfit,
		},
		{
			"ClearOutfit",
			http.MethodDelete,
			"/v1/wizard/sessions/:sessionId/outfit",
			handleFunctions.WizardAPI.ClearOutfit,
		},
		{
			"Next",
			http.MethodPost,
			"/v1/wizard/sessions/:sessionId/next",
			handleFunctions.WizardAPI.Next,
		},
		{
			"Back",
			http.MethodPost,
			"/v1/wizard/sessions/:sessionId/back",
			handleFunctions.WizardAPI.Back,
		},
		{
			"SkipOutfit",
			http.MethodPost,
			"/v1/wizard/sessions/:sessionId/skip",
			handleFunctions.WizardAPI.SkipOutfit,
		},
		{
			"Quote",
			http.MethodGet,
			"/v1/wizard/sessions/:sessionId/quote",
			handleFunctions.WizardAPI.Quote,
		},
		{
			"Generate",
			http.MethodPost,
			"/v1/wizard/sessions/:sessionId/generate",
			handleFunctions.WizardAPI.Generate,
		},
		{
			"GetGeneration",
			http.MethodGet,
			"/v1/generations/:generationId",
			handleFunctions.GenerationsAPI.GetGeneration,
		},
		{
			"ListGenerationsForImage",
			http.MethodGet,
			"/v1/images/:imageId/generations",
			handleFunctions.GenerationsAPI.ListGenerationsForImage,
		},
		{
			"RenderPrompt",
			http.MethodPost,
			"/v1/admin/prompts/render",
			prompts,
		},
		{
			"ListPromptTemplates",
			http.MethodGet,
			"/v1/admin/prompts/templates",
			templates,
		},
	}
}
