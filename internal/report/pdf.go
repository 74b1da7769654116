package report

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	PDFFilename    = "Interview_Report.pdf"
	PDFContentType = "application/pdf"
)

// Геометрия страницы в пунктах, отступы считаются от верхнего края
const (
	pageWidth     = 612.0
	pageHeight    = 792.0
	titleTop      = 50.0
	bodyTop       = 80.0
	newPageTop    = 50.0
	lineHeight    = 15.0
	blockGap      = 25.0
	bottomMargin  = 100.0
	rightMargin   = 50.0
	questionLeft  = 50.0
	answerLeft    = 60.0
	titleFontSize = 16.0
	bodyFontSize  = 11.0
)

// pdfLine одна строка на странице
type pdfLine struct {
	X, Y     float64
	Text     string
	Title    bool
	Centered bool
}

type pdfPage []pdfLine

// measureFunc ширина строки текущим шрифтом в пунктах
type measureFunc func(text string) float64

// layoutPDF раскладывает отчет по страницам letter. Перенос страницы
// проверяется перед каждой строкой, длинные строки переносятся по словам.
func layoutPDF(r Report, measure measureFunc) []pdfPage {
	pages := []pdfPage{{
		{X: pageWidth / 2, Y: titleTop, Text: r.Title, Title: true, Centered: true},
	}}
	y := bodyTop

	emit := func(x float64, text string) {
		for _, line := range wrapText(text, pageWidth-rightMargin-x, measure) {
			if y > pageHeight-bottomMargin {
				pages = append(pages, pdfPage{})
				y = newPageTop
			}
			pages[len(pages)-1] = append(pages[len(pages)-1], pdfLine{X: x, Y: y, Text: line})
			y += lineHeight
		}
	}

	for _, e := range r.Entries {
		emit(questionLeft, fmt.Sprintf("Q%d: %s", e.Number, e.Question))
		for _, line := range answerLines(e.Answer) {
			emit(answerLeft, "Answer: "+line)
		}
		emit(answerLeft, fmt.Sprintf("Score: %d / %d", e.Score, e.Max))
		if e.Signal != "" {
			emit(answerLeft, "Emotion: "+e.Signal)
		}
		y += blockGap - lineHeight
	}

	emit(questionLeft, r.FinalLine())
	return pages
}

// wrapText переносит строку по словам в заданную ширину; слово шире строки режется по символам
func wrapText(text string, width float64, measure measureFunc) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		for measure(word) > width {
			cut := fitRunes(word, width, measure)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// fitRunes длина в байтах самого длинного префикса, помещающегося в ширину (минимум одна руна)
func fitRunes(word string, width float64, measure measureFunc) int {
	cut := 0
	for cut < len(word) {
		_, size := utf8.DecodeRuneInString(word[cut:])
		if cut > 0 && measure(word[:cut+size]) > width {
			break
		}
		cut += size
	}
	return cut
}

// toWinAnsi кодирует текст в cp1252 для встроенных шрифтов PDF.
// Символы вне cp1252 (кириллица, CJK) заменяются на '?'.
func toWinAnsi(text string) string {
	var b strings.Builder
	for _, r := range text {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// PDFRenderer постраничный PDF отчет шрифтом Helvetica
type PDFRenderer struct{}

func (PDFRenderer) Render(r Report) (*Artifact, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(r.Title, true)

	pdf.SetFont("Helvetica", "", bodyFontSize)
	pages := layoutPDF(r, func(text string) float64 {
		return pdf.GetStringWidth(toWinAnsi(text))
	})

	for _, page := range pages {
		pdf.AddPage()
		for _, line := range page {
			if line.Title {
				pdf.SetFont("Helvetica", "B", titleFontSize)
			} else {
				pdf.SetFont("Helvetica", "", bodyFontSize)
			}

			text := toWinAnsi(line.Text)
			x := line.X
			if line.Centered {
				x -= pdf.GetStringWidth(text) / 2
			}
			pdf.Text(x, line.Y, text)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return &Artifact{
		Filename:    PDFFilename,
		ContentType: PDFContentType,
		Data:        buf.Bytes(),
	}, nil
}
