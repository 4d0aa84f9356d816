package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/vedanttapdiya/vt-portfolio/internal/config"
)

// ResumeGenerator renders the owner's profile as a downloadable PDF.
type ResumeGenerator struct {
	Profile  config.ProfileConfig
	fontName string
}

func NewResumeGenerator(profile config.ProfileConfig) *ResumeGenerator {
	return &ResumeGenerator{Profile: profile, fontName: "Helvetica"}
}

func (g *ResumeGenerator) Generate() ([]byte, error) {
	p := g.Profile

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s - Resume", p.Name), true)
	pdf.SetAuthor(p.Name, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont(g.fontName, "B", 20)
	pdf.CellFormat(0, 10, p.Name, "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 7, p.Title, "", 1, "C", false, 0, "")

	contact := p.Email
	if p.Location != "" {
		contact = fmt.Sprintf("%s  |  %s", p.Email, p.Location)
	}
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, contact, "", 1, "C", false, 0, "")
	g.hr(pdf)

	if p.Summary != "" {
		g.sectionTitle(pdf, "Summary")
		pdf.MultiCell(0, 5.5, p.Summary, "", "L", false)
		pdf.Ln(2)
		g.hr(pdf)
	}

	if len(p.Experience) > 0 {
		g.sectionTitle(pdf, "Experience")
		for _, exp := range p.Experience {
			pdf.SetFont(g.fontName, "B", 11)
			pdf.CellFormat(0, 6, fmt.Sprintf("%s - %s", exp.Role, exp.Company), "", 1, "L", false, 0, "")
			pdf.SetFont(g.fontName, "I", 10)
			pdf.CellFormat(0, 5, exp.Period, "", 1, "L", false, 0, "")
			pdf.SetFont(g.fontName, "", 10)
			for _, d := range exp.Details {
				pdf.MultiCell(0, 5, "- "+d, "", "L", false)
			}
			pdf.Ln(2)
		}
		g.hr(pdf)
	}

	if len(p.Skills) > 0 {
		g.sectionTitle(pdf, "Skills")
		pdf.SetFont(g.fontName, "", 10)
		for i := 0; i < len(p.Skills); i += 4 {
			end := i + 4
			if end > len(p.Skills) {
				end = len(p.Skills)
			}
			line := ""
			for j := i; j < end; j++ {
				if line != "" {
					line += "   "
				}
				line += p.Skills[j]
			}
			pdf.CellFormat(0, 5.5, line, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
		g.hr(pdf)
	}

	if len(p.Links) > 0 {
		g.sectionTitle(pdf, "Links")
		for _, l := range p.Links {
			g.kvLine(pdf, l.Label, l.URL)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render resume pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ResumeGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ResumeGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 10)
	pdf.CellFormat(35, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ResumeGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 3)
}
