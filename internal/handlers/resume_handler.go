package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vedanttapdiya/vt-portfolio/internal/pdf"
)

type ResumeHandler struct {
	Generator *pdf.ResumeGenerator
}

func NewResumeHandler(generator *pdf.ResumeGenerator) *ResumeHandler {
	return &ResumeHandler{Generator: generator}
}

// @Summary      Download the resume
// @Description  Renders the owner's resume as a PDF
// @Tags         Profile
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/resume [get]
func (h *ResumeHandler) Download(c *gin.Context) {
	data, err := h.Generator.Generate()
	if err != nil {
		log.Printf("[resume][download] generate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate resume"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="resume.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
