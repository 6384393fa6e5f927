// Package export renders a board's operation log to PDF and, when a bucket
// is configured, uploads the rendering to S3-compatible storage.
package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/dmitrijs2005/sketchboard/internal/board/models"
)

// Page geometry in millimetres (A4 landscape).
const (
	pageWidth  = 297.0
	pageHeight = 210.0
	margin     = 10.0

	minLineWidth = 0.1
)

// bounds is the axis-aligned box around every point of the log.
type bounds struct {
	minX, minY, maxX, maxY float64
	empty                  bool
}

func measure(ops []models.Operation) bounds {
	b := bounds{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1), empty: true}
	for _, op := range ops {
		pad := op.StrokeWidth / 2
		for _, p := range op.Points {
			b.minX = math.Min(b.minX, p.X-pad)
			b.minY = math.Min(b.minY, p.Y-pad)
			b.maxX = math.Max(b.maxX, p.X+pad)
			b.maxY = math.Max(b.maxY, p.Y+pad)
			b.empty = false
		}
	}
	return b
}

// transform maps board coordinates into the printable area, keeping the
// aspect ratio and never enlarging beyond 1 board unit per millimetre.
type transform struct {
	scale, offX, offY float64
}

func fit(b bounds) transform {
	if b.empty {
		return transform{scale: 1, offX: margin, offY: margin}
	}
	w := math.Max(b.maxX-b.minX, 1)
	h := math.Max(b.maxY-b.minY, 1)
	scale := math.Min((pageWidth-2*margin)/w, (pageHeight-2*margin)/h)
	scale = math.Min(scale, 1)
	return transform{
		scale: scale,
		offX:  margin - b.minX*scale,
		offY:  margin - b.minY*scale,
	}
}

func (t transform) point(p models.Point) (float64, float64) {
	return p.X*t.scale + t.offX, p.Y*t.scale + t.offY
}

// parseHexColor accepts "#RRGGBB" or "#RGB". Anything else is black.
func parseHexColor(s string) (r, g, b int) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int((v >> 16) & 0xFF), int((v >> 8) & 0xFF), int(v & 0xFF)
}

// Render writes ops, oldest first, as a one-page PDF. Erase operations are
// painted in their sentinel color over whatever came before them.
func Render(w io.Writer, ops []models.Operation, created time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Sketchboard export", true)
	pdf.SetCreator("sketchboard", true)
	pdf.SetCreationDate(created)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	pdf.AddPage()

	t := fit(measure(ops))

	for _, op := range ops {
		if len(op.Points) == 0 {
			continue
		}

		color := op.Color
		if op.Kind == models.KindErase {
			color = models.EraseColor
		}
		r, g, b := parseHexColor(color)
		pdf.SetDrawColor(r, g, b)
		pdf.SetFillColor(r, g, b)

		width := math.Max(op.StrokeWidth*t.scale, minLineWidth)
		pdf.SetLineWidth(width)

		x, y := t.point(op.Points[0])
		if len(op.Points) == 1 {
			pdf.Circle(x, y, width/2, "F")
			continue
		}

		pdf.MoveTo(x, y)
		for _, p := range op.Points[1:] {
			pdf.LineTo(t.point(p))
		}
		pdf.DrawPath("D")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
