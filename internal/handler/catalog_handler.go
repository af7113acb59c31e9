package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/inspection-api/internal/models"
	"github.com/noah-isme/inspection-api/pkg/response"
)

type catalogService interface {
	Objects() []models.Object
	LocationsOf(objectID string) ([]models.Location, error)
	UsersByRole(role models.UserRole) ([]models.User, error)
}

// CatalogHandler serves reference data.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler builds a new handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Objects godoc
// @Summary List inspection objects with their locations
// @Tags Catalog
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Success 200 {object} response.Envelope
// @Router /objects [get]
func (h *CatalogHandler) Objects(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Objects(), nil)
}

// Locations godoc
// @Summary List technical locations of an object
// @Tags Catalog
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Object ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /objects/{id}/locations [get]
func (h *CatalogHandler) Locations(c *gin.Context) {
	locations, err := h.service.LocationsOf(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, locations, nil)
}

// Users godoc
// @Summary List users, optionally by role
// @Tags Catalog
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param role query string false "master or worker"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *CatalogHandler) Users(c *gin.Context) {
	users, err := h.service.UsersByRole(models.UserRole(c.Query("role")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}
