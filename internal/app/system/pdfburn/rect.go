// internal/app/system/pdfburn/rect.go
package pdfburn

import "github.com/caseflowhq/caseflow/internal/domain/models"

// FieldRect is a field placement resolved to page points, top-left origin
// (the drawing library's coordinate space).
type FieldRect struct {
	X, Y, W, H float64
}

// PlaceField maps a field's normalized coordinates onto a page of the given
// size in points. Inputs are clamped to [0,1] so a malformed placement draws
// inside the page instead of erroring.
func PlaceField(f models.SigningField, pageW, pageH float64) FieldRect {
	x := clamp01(f.X)
	y := clamp01(f.Y)
	w := clamp01(f.Width)
	h := clamp01(f.Height)

	if x+w > 1 {
		w = 1 - x
	}
	if y+h > 1 {
		h = 1 - y
	}

	return FieldRect{
		X: x * pageW,
		Y: y * pageH,
		W: w * pageW,
		H: h * pageH,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
