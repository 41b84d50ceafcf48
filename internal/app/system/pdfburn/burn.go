// internal/app/system/pdfburn/burn.go

// Package pdfburn flattens completed form-field values onto a document,
// producing the immutable signed PDF. PDF originals keep their page
// geometry via template import; raster originals become a single-page PDF
// sized to the image.
package pdfburn

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/caseflowhq/caseflow/internal/domain/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

const (
	maxFontSize = 14.0
	minFontSize = 6.0
)

// Burn renders the original document with the given field values drawn at
// their placements and returns the resulting PDF bytes.
//
// values maps field id to the submitted value. Signature fields carry a
// data-URL image; all other types carry plain text. Fields with no value
// are left blank.
func Burn(original []byte, mimeType string, fields []models.SigningField, values map[string]string) ([]byte, error) {
	if mimeType == "application/pdf" {
		return burnPDF(original, fields, values)
	}
	return burnImage(original, mimeType, fields, values)
}

// burnPDF imports every page of the original as a template and overlays the
// field values. The importer panics on malformed input, so the import phase
// runs under recover.
func burnPDF(original []byte, fields []models.SigningField, values map[string]string) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("import pdf: %v", r)
		}
	}()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt"})
	imp := gofpdi.NewImporter()

	rs := io.ReadSeeker(bytes.NewReader(original))
	firstTpl := imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	sizes := imp.GetPageSizes()
	pageCount := len(sizes)
	if pageCount == 0 {
		return nil, fmt.Errorf("import pdf: no pages")
	}

	byPage := groupFieldsByPage(fields, pageCount)

	for pageNo := 1; pageNo <= pageCount; pageNo++ {
		var tpl int
		if pageNo == 1 {
			tpl = firstTpl
		} else {
			tpl = imp.ImportPageFromStream(pdf, &rs, pageNo, "/MediaBox")
		}

		box := sizes[pageNo]["/MediaBox"]
		pageW, pageH := box["w"], box["h"]
		if pageW <= 0 || pageH <= 0 {
			return nil, fmt.Errorf("import pdf: page %d has no MediaBox", pageNo)
		}

		pdf.AddPageFormat(orientation(pageW, pageH), gofpdf.SizeType{Wd: pageW, Ht: pageH})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, pageW, pageH)

		if err := drawFields(pdf, byPage[pageNo], values, pageW, pageH); err != nil {
			return nil, err
		}
	}

	return output(pdf)
}

// burnImage converts a raster original into a one-page PDF sized to the
// image (one pixel = one point) and overlays the field values.
func burnImage(original []byte, mimeType string, fields []models.SigningField, values map[string]string) ([]byte, error) {
	imgBytes, imgType, err := normalizeImage(original, mimeType)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	pageW, pageH := float64(cfg.Width), float64(cfg.Height)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt"})
	pdf.AddPageFormat(orientation(pageW, pageH), gofpdf.SizeType{Wd: pageW, Ht: pageH})

	opts := gofpdf.ImageOptions{ImageType: imgType}
	pdf.RegisterImageOptionsReader("original", opts, bytes.NewReader(imgBytes))
	pdf.ImageOptions("original", 0, 0, pageW, pageH, false, opts, 0, "")

	byPage := groupFieldsByPage(fields, 1)
	if err := drawFields(pdf, byPage[1], values, pageW, pageH); err != nil {
		return nil, err
	}

	return output(pdf)
}

// normalizeImage returns image bytes in a format the PDF library can embed.
// webp and bmp are re-encoded to PNG; the rest pass through.
func normalizeImage(data []byte, mimeType string) ([]byte, string, error) {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return data, "JPEG", nil
	case "image/png":
		return data, "PNG", nil
	case "image/gif":
		return data, "GIF", nil
	case "image/webp":
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decode webp: %w", err)
		}
		return encodePNG(img)
	case "image/bmp":
		img, err := bmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decode bmp: %w", err)
		}
		return encodePNG(img)
	}
	return nil, "", fmt.Errorf("unsupported image type %q", mimeType)
}

func encodePNG(img image.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), "PNG", nil
}

// groupFieldsByPage buckets fields by their (clamped, 1-based) page number.
func groupFieldsByPage(fields []models.SigningField, pageCount int) map[int][]models.SigningField {
	byPage := make(map[int][]models.SigningField)
	for _, f := range fields {
		page := f.Page
		if page < 1 {
			page = 1
		}
		if page > pageCount {
			page = pageCount
		}
		byPage[page] = append(byPage[page], f)
	}
	return byPage
}

func drawFields(pdf *gofpdf.Fpdf, fields []models.SigningField, values map[string]string, pageW, pageH float64) error {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, f := range fields {
		val := values[f.ID]
		if val == "" {
			continue
		}
		rect := PlaceField(f, pageW, pageH)
		if f.Type == models.FieldTypeSignature {
			if err := drawSignature(pdf, rect, f.ID, val); err != nil {
				// An unreadable optional signature is left blank. A required
				// one aborts: the signed artifact must carry it.
				if !f.Required {
					continue
				}
				return fmt.Errorf("field %s: %w", f.ID, err)
			}
			continue
		}
		drawText(pdf, tr, rect, val)
	}
	return nil
}

// drawText renders a value inside its rect with a font size derived from
// the rect height, baseline near the rect bottom. The rect doubles as a
// clip region so overlong values never spill past the field width.
func drawText(pdf *gofpdf.Fpdf, tr func(string) string, rect FieldRect, val string) {
	size := rect.H * 0.7
	if size > maxFontSize {
		size = maxFontSize
	}
	if size < minFontSize {
		size = minFontSize
	}
	pdf.SetFont("Helvetica", "", size)
	pdf.SetTextColor(0, 0, 0)
	baseline := rect.Y + (rect.H+size*0.7)/2
	pdf.ClipRect(rect.X, rect.Y, rect.W, rect.H, false)
	pdf.Text(rect.X+2, baseline, fallbackText(tr, val))
	pdf.ClipEnd()
}

// fallbackText maps a value into the core font's code page. The check mark
// used by checkbox-style inputs becomes "V"; anything else the code page
// cannot hold is substituted rather than dropped.
func fallbackText(tr func(string) string, s string) string {
	s = strings.ReplaceAll(s, "✓", "V")
	s = strings.ReplaceAll(s, "✔", "V")
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		mapped := tr(string(r))
		if mapped == "" || mapped == string(r) && r > 0xFF {
			b.WriteByte('?')
			continue
		}
		b.WriteString(mapped)
	}
	return b.String()
}

// drawSignature decodes a data-URL image and draws it aspect-fit, centered
// in the field rect.
func drawSignature(pdf *gofpdf.Fpdf, rect FieldRect, fieldID, dataURL string) error {
	imgBytes, imgType, err := decodeDataURL(dataURL)
	if err != nil {
		return err
	}

	name := "sig_" + fieldID
	opts := gofpdf.ImageOptions{ImageType: imgType}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(imgBytes))
	if pdf.Err() {
		return fmt.Errorf("register signature image: %s", pdf.Error())
	}

	iw, ih := info.Width(), info.Height()
	if iw <= 0 || ih <= 0 {
		return fmt.Errorf("signature image has no size")
	}

	scale := rect.W / iw
	if s := rect.H / ih; s < scale {
		scale = s
	}
	w, h := iw*scale, ih*scale
	x := rect.X + (rect.W-w)/2
	y := rect.Y + (rect.H-h)/2

	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

// decodeDataURL parses a "data:image/...;base64," payload.
func decodeDataURL(dataURL string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, "", fmt.Errorf("not a data URL")
	}

	var imgType string
	switch {
	case strings.Contains(header, "image/png"):
		imgType = "PNG"
	case strings.Contains(header, "image/jpeg"), strings.Contains(header, "image/jpg"):
		imgType = "JPEG"
	default:
		return nil, "", fmt.Errorf("unsupported signature image type in %q", header)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode signature payload: %w", err)
	}
	return raw, imgType, nil
}

func orientation(w, h float64) string {
	if w > h {
		return "L"
	}
	return "P"
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
