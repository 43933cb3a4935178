package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tenzind12/housing/internal/repository"
)

// PhotoHandler serves stored listing photos. The URLs the upload
// coordinator hands out point here.
type PhotoHandler struct {
	Repo *repository.PhotoRepository
}

func (h *PhotoHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/photos/:id", h.GetPhoto)
}

// GET /api/photos/:id
func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	data, err := h.Repo.Download(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}
