package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/inspection-api/internal/middleware"
	"github.com/noah-isme/inspection-api/internal/models"
)

// Handlers groups the API handlers mounted by RegisterRoutes.
type Handlers struct {
	Catalog *CatalogHandler
	Sheets  *SheetHandler
}

// RegisterRoutes mounts the API under group. identity must resolve the acting
// user before any handler runs.
func RegisterRoutes(group *gin.RouterGroup, identity gin.HandlerFunc, h Handlers) {
	group.Use(identity)

	group.GET("/objects", h.Catalog.Objects)
	group.GET("/objects/:id/locations", h.Catalog.Locations)
	group.GET("/users", middleware.RequireRoles(models.RoleMaster), h.Catalog.Users)

	sheets := group.Group("/sheets")
	sheets.POST("", h.Sheets.Create)
	sheets.GET("", h.Sheets.List)
	sheets.GET("/:id", h.Sheets.Get)
	sheets.POST("/:id/start", h.Sheets.Start)
	sheets.POST("/:id/defects", h.Sheets.AddDefect)
	sheets.DELETE("/:id/defects/:defectId", h.Sheets.RemoveDefect)
	sheets.POST("/:id/submit", h.Sheets.Submit)
	sheets.PUT("/:id/notes", h.Sheets.SetNotes)
	sheets.POST("/:id/approve", h.Sheets.Approve)
	sheets.GET("/:id/history", h.Sheets.History)
	sheets.GET("/:id/export", h.Sheets.Export)
}
