package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/inspection-api/internal/middleware"
	"github.com/noah-isme/inspection-api/internal/models"
)

func actorFromContext(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}
