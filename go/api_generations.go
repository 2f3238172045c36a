package portraitserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	custmapper "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/http/mapper"
	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	custports "github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

// GenerationsAPI exposes the generation history.
type GenerationsAPI struct {
	service custports.Service
}

// NewGenerationsAPI creates a GenerationsAPI backed by the provided service.
func NewGenerationsAPI(service custports.Service) GenerationsAPI {
	return GenerationsAPI{service: service}
}

// Get /v1/generations/:generationId
func (api *GenerationsAPI) GetGeneration(c *gin.Context) {
	id, ok := requiredParam(c, "generationId")
	if !ok {
		return
	}
	record, err := api.service.GetGeneration(c.Request.Context(), custtypes.GenerationIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, custmapper.FromGeneration(record))
}

// Get /v1/images/:imageId/generations
// Lists generations made from one source image, newest first
func (api *GenerationsAPI) ListGenerationsForImage(c *gin.Context) {
	id, ok := requiredParam(c, "imageId")
	if !ok {
		return
	}
	records, err := api.service.ListGenerationsForImage(c.Request.Context(), custtypes.ImageGenerationsQuery{ImageID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, custmapper.FromGenerationList(records))
}

func requiredParam(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		respondBadRequest(c, errors.New(name+" path parameter is required"))
		return "", false
	}
	return value, true
}
