package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// PDFSection is one {id, title, content} tuple of the paginated export.
type PDFSection struct {
	ID      string
	Title   string
	Content string
}

// Layout metrics of the paginated document, in millimeters on A4 portrait.
const (
	pdfMargin       = 20.0
	headerBandH     = 35.0
	footerReserve   = 25.0
	bodyLineH       = 5.0
	titleAdvance    = 10.0
	sectionGap      = 10.0
	separatorInset  = 30.0
	minContentLen   = 50
	productLabel    = "Mini-CELIA"
	productSubtitle = "Copilot Inteligente de Licitaciones"
	footerCenter    = "Generado por Mini-CELIA"
)

// PDFFileName derives the download name: expediente identifier plus the ISO
// date of generation.
func PDFFileName(expedienteID string, now time.Time) string {
	if expedienteID == "" {
		expedienteID = "JN1"
	}
	return fmt.Sprintf("%s_%s.pdf", expedienteID, now.Format("2006-01-02"))
}

// BuildPDF renders the paginated dossier document: branded header band,
// expediente identity box, generation timestamp, then each section as a
// colored title plus word-wrapped body with page breaks wherever the
// remaining vertical space runs out. Footers carry the total page count,
// which is only known after the full layout pass; the count is stamped into
// every page afterwards via the page-number alias.
func BuildPDF(expedienteID string, sections []PDFSection) ([]byte, error) {
	if expedienteID == "" {
		expedienteID = "SIN_ID"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	maxWidth := pageW - 2*pdfMargin
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")

	// Footer pass: expediente left, product label center, page X of N right.
	pdf.SetFooterFunc(func() {
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.3)
		pdf.Line(pdfMargin, pageH-20, pageW-pdfMargin, pageH-20)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.Text(pdfMargin, pageH-12, tr(expedienteID))
		center := tr(footerCenter)
		pdf.Text((pageW-pdf.GetStringWidth(center))/2, pageH-12, center)
		right := fmt.Sprintf("Pág. %d/{nb}", pdf.PageNo())
		right = tr(right)
		pdf.Text(pageW-pdfMargin-pdf.GetStringWidth(right), pageH-12, right)
	})

	pdf.AddPage()
	y := pdfMargin

	// Branded header band.
	pdf.SetFillColor(41, 128, 185)
	pdf.Rect(0, 0, pageW, headerBandH, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Text(pdfMargin, 22, productLabel)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(pdfMargin, 28, tr(productSubtitle))
	y = 50

	// Expediente identity box.
	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(pdfMargin, y, maxWidth, 25, "F")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pdfMargin+5, y+8, tr("Expediente: "+expedienteID))
	pdf.SetFont("Helvetica", "", 11)
	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	pdf.Text(pdfMargin+5, y+16, tr("Secciones: "+strings.Join(ids, ", ")))
	y += 35

	// Generation timestamp.
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.Text(pdfMargin, y, tr("Documento generado el: "+time.Now().Format("02/01/2006 15:04")))
	y += 8

	pdf.SetDrawColor(41, 128, 185)
	pdf.SetLineWidth(0.5)
	pdf.Line(pdfMargin, y, pageW-pdfMargin, y)
	y += 15

	breakIfNeeded := func(required float64) {
		if y+required > pageH-footerReserve {
			pdf.AddPage()
			y = pdfMargin
		}
	}

	writeWrapped := func(text string, size float64, style string) {
		pdf.SetFont("Helvetica", style, size)
		for _, line := range pdf.SplitText(tr(text), maxWidth) {
			breakIfNeeded(bodyLineH)
			pdf.Text(pdfMargin, y, line)
			y += bodyLineH
		}
		y += 3
	}

	for i, section := range sections {
		breakIfNeeded(30)

		pdf.SetTextColor(41, 128, 185)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Text(pdfMargin, y, tr(fmt.Sprintf("%s - %s", section.ID, section.Title)))
		y += titleAdvance

		content := StripHTML(section.Content)
		if len(content) > minContentLen {
			pdf.SetTextColor(40, 40, 40)
			writeWrapped(content, 10.5, "")
		} else {
			pdf.SetTextColor(150, 150, 150)
			writeWrapped("No hay contenido generado para esta sección.", 10, "I")
		}

		if i < len(sections)-1 {
			y += sectionGap
			breakIfNeeded(20)
			pdf.SetDrawColor(200, 200, 200)
			pdf.SetLineWidth(0.3)
			pdf.Line(pdfMargin+separatorInset, y, pageW-pdfMargin-separatorInset, y)
			y += 15
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
