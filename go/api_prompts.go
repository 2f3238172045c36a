package portraitserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	promptsapp "github.com/Apurer/portrait-customizer/internal/domains/prompts/application"
	promptsdomain "github.com/Apurer/portrait-customizer/internal/domains/prompts/domain"
)

// PromptRenderer is the subset of the prompts service the admin endpoints use.
type PromptRenderer interface {
	Render(ctx context.Context, input promptsapp.RenderInput) (*promptsdomain.Rendering, error)
	Templates(ctx context.Context) []string
}

// RenderPromptRequest renders a named template or inline text.
type RenderPromptRequest struct {
	Template string            `json:"template,omitempty"`
	Text     string            `json:"text,omitempty"`
	Values   map[string]string `json:"values"`
}

// RenderPromptResponse is the rendered prompt plus any placeholders left in place.
type RenderPromptResponse struct {
	Text       string   `json:"text"`
	Unresolved []string `json:"unresolved"`
}

// PromptsAPI exposes admin prompt-template rendering.
type PromptsAPI struct {
	prompts PromptRenderer
}

// NewPromptsAPI creates a PromptsAPI.
func NewPromptsAPI(prompts PromptRenderer) PromptsAPI {
	return PromptsAPI{prompts: prompts}
}

// Post /v1/admin/prompts/render
func (api *PromptsAPI) RenderPrompt(c *gin.Context) {
	var payload RenderPromptRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	rendering, err := api.prompts.Render(c.Request.Context(), promptsapp.RenderInput{
		TemplateName: payload.Template,
		Text:         payload.Text,
		Values:       payload.Values,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	unresolved := rendering.Unresolved
	if unresolved == nil {
		unresolved = []string{}
	}
	c.JSON(http.StatusOK, RenderPromptResponse{Text: rendering.Text, Unresolved: unresolved})
}

// Get /v1/admin/prompts/templates
func (api *PromptsAPI) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": api.prompts.Templates(c.Request.Context())})
}
