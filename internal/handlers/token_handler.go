package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vedanttapdiya/vt-portfolio/internal/services"
)

type TokenHandler struct {
	CSRF *services.CSRFService
}

func NewTokenHandler(csrf *services.CSRFService) *TokenHandler {
	return &TokenHandler{CSRF: csrf}
}

// @Summary      Issue a CSRF token
// @Description  Returns a short-lived token the contact form must echo back
// @Tags         Contact
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/csrf-token [get]
func (h *TokenHandler) Issue(c *gin.Context) {
	token, err := h.CSRF.Issue()
	if err != nil {
		log.Printf("[csrf][issue] failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"csrfToken": token,
		"expiresIn": int(h.CSRF.TTL().Seconds()),
	})
}
