// internal/app/system/pdfburn/burn_test.go
package pdfburn

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/caseflowhq/caseflow/internal/domain/models"
	"github.com/jung-kurt/gofpdf"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestDrawTextClipsToFieldRect(t *testing.T) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt"})
	pdf.SetCompression(false)
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: 400, Ht: 400})
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	rect := FieldRect{X: 10, Y: 10, W: 40, H: 20}
	drawText(pdf, tr, rect, "a value far wider than forty points of field")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Output: %v", err)
	}
	// With compression off the content stream is readable; the rect must be
	// set as a clip path (re ... W n) before the text is shown.
	if !bytes.Contains(buf.Bytes(), []byte(" W n")) {
		t.Error("no clipping path in content stream")
	}
}

func TestBurnLeavesUnreadableOptionalSignatureBlank(t *testing.T) {
	original := testPNG(t)
	fields := []models.SigningField{
		{ID: "sig1", Type: models.FieldTypeSignature, X: 0.1, Y: 0.1, Width: 0.5, Height: 0.3, Page: 1, Required: false},
	}

	out, err := Burn(original, "image/png", fields, map[string]string{"sig1": "not-a-data-url"})
	if err != nil {
		t.Fatalf("Burn with unreadable optional signature: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestBurnRejectsUnreadableRequiredSignature(t *testing.T) {
	original := testPNG(t)
	fields := []models.SigningField{
		{ID: "sig1", Type: models.FieldTypeSignature, X: 0.1, Y: 0.1, Width: 0.5, Height: 0.3, Page: 1, Required: true},
	}

	if _, err := Burn(original, "image/png", fields, map[string]string{"sig1": "not-a-data-url"}); err == nil {
		t.Error("expected error for unreadable required signature")
	}
}
