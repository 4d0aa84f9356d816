package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vedanttapdiya/vt-portfolio/internal/metrics"
	"github.com/vedanttapdiya/vt-portfolio/internal/models"
	"github.com/vedanttapdiya/vt-portfolio/internal/services"
)

// defaultSiteKey is served when no site key is configured; the config
// endpoint always answers 200 so the widget degrades instead of blocking.
const defaultSiteKey = "1x00000000000000000000AA"

type TurnstileHandler struct {
	Verifier *services.VerificationService
	SiteKey  string
}

func NewTurnstileHandler(verifier *services.VerificationService, siteKey string) *TurnstileHandler {
	return &TurnstileHandler{Verifier: verifier, SiteKey: siteKey}
}

// @Summary      Turnstile widget configuration
// @Description  Returns the public site key used to render the challenge widget
// @Tags         Turnstile
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/turnstile-config [get]
func (h *TurnstileHandler) GetConfig(c *gin.Context) {
	key := h.SiteKey
	if key == "" {
		key = defaultSiteKey
	}
	c.JSON(http.StatusOK, gin.H{"siteKey": key})
}

// @Summary      Verify a Turnstile token
// @Description  Validates a challenge token with Cloudflare and enforces single use per action
// @Tags         Turnstile
// @Accept       json
// @Produce      json
// @Param        request  body      models.VerifyRequest  true  "Token and optional action context"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /api/verify-turnstile [post]
func (h *TurnstileHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	result, err := h.Verifier.Verify(c.Request.Context(), req.Token, req.ContactType, req.ContactID, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenRequired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Token is required"})
		case errors.Is(err, services.ErrTokenReused):
			metrics.Verifications.WithLabelValues("reused").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "This token has already been used"})
		case errors.Is(err, services.ErrVerifierNotConfigured):
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server configuration error: Missing secret key"})
		case errors.Is(err, services.ErrUpstreamUnavailable):
			metrics.Verifications.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Verification service unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}

	if !result.Success {
		metrics.Verifications.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success":    false,
			"message":    "Verification failed",
			"errorCodes": result.ErrorCodes,
		})
		return
	}

	if result.Cached {
		metrics.Verifications.WithLabelValues("cached").Inc()
	} else {
		metrics.Verifications.WithLabelValues("accepted").Inc()
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"contactId":   req.ContactID,
		"contactType": req.ContactType,
	})
}
