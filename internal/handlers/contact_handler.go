package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vedanttapdiya/vt-portfolio/internal/metrics"
	"github.com/vedanttapdiya/vt-portfolio/internal/models"
	"github.com/vedanttapdiya/vt-portfolio/internal/services"
)

type ContactHandler struct {
	Service *services.ContactService
	Limiter *services.RateLimiter
}

func NewContactHandler(service *services.ContactService, limiter *services.RateLimiter) *ContactHandler {
	return &ContactHandler{Service: service, Limiter: limiter}
}

// @Summary      Submit the contact form
// @Description  Validates, verifies the challenge token, and dispatches one email
// @Tags         Contact
// @Accept       json
// @Produce      json
// @Param        request  body      models.ContactRequest  true  "Contact form fields"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /api/contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	// Order matters: presence, then rate limit, then challenge, then shape.
	// A missing token must never trigger an upstream call, and a throttled
	// client must never trigger one either.
	if missing := missingFields(&req); len(missing) > 0 {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Missing required fields",
			"errors":  missing,
		})
		return
	}
	if strings.TrimSpace(req.TurnstileToken) == "" {
		metrics.ContactSubmissions.WithLabelValues("challenge_failed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Turnstile verification required"})
		return
	}

	clientIP := c.ClientIP()
	if allowed, retryAfter := h.Limiter.Allow(clientIP); !allowed {
		metrics.ContactSubmissions.WithLabelValues("rate_limited").Inc()
		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", fmt.Sprintf("%d", seconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"message": "Too many requests, please try again later",
		})
		return
	}

	id, err := h.Service.Submit(c.Request.Context(), &req, clientIP)
	if err != nil {
		h.writeSubmitError(c, err)
		return
	}

	metrics.ContactSubmissions.WithLabelValues("accepted").Inc()
	metrics.EmailSends.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (h *ContactHandler) writeSubmitError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var cerr *services.ChallengeFailedError

	switch {
	case errors.As(err, &verr):
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid input data",
			"errors":  verr.Fields,
		})
	case errors.As(err, &cerr):
		metrics.ContactSubmissions.WithLabelValues("challenge_failed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Turnstile verification failed",
			"details": strings.Join(cerr.ErrorCodes, ", "),
		})
	case errors.Is(err, services.ErrTokenReused):
		metrics.ContactSubmissions.WithLabelValues("challenge_failed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Turnstile token has already been used",
		})
	case errors.Is(err, services.ErrVerifierNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Server configuration error: Missing secret key",
		})
	case errors.Is(err, services.ErrUpstreamUnavailable):
		metrics.ContactSubmissions.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Verification service unavailable",
		})
	default:
		metrics.ContactSubmissions.WithLabelValues("error").Inc()
		metrics.EmailSends.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to send email",
		})
	}
}

func missingFields(req *models.ContactRequest) []string {
	var missing []string
	for field, v := range map[string]string{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"email":     req.Email,
		"message":   req.Message,
		"csrfToken": req.CSRFToken,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
