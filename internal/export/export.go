// Package export loads images into the canvas and writes canvas snapshots
// to PNG or PDF files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/jung-kurt/gofpdf"
	"github.com/mitchellh/go-homedir"
)

// PDFDPI is the resolution at which one canvas pixel maps to PDF units.
const PDFDPI = 96

// ErrUnknownFormat is returned by Save for unsupported file extensions.
var ErrUnknownFormat = errors.New("unknown export format")

// LoadImage decodes the image at path. A leading ~ is expanded to the
// home directory.
func LoadImage(path string) (image.Image, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", path, err)
	}
	img, err := imgio.Open(p)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	return img, nil
}

// Fit scales img to fit within w by h while keeping its aspect ratio.
// Images already within bounds are returned unscaled.
func Fit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || iw == 0 || ih == 0 || (iw <= w && ih <= h) {
		return img
	}

	scale := min(float64(w)/float64(iw), float64(h)/float64(ih))
	nw := max(1, int(float64(iw)*scale+0.5))
	nh := max(1, int(float64(ih)*scale+0.5))
	return transform.Resize(img, min(nw, w), min(nh, h), transform.Linear)
}

// Save writes img to path, choosing the format from the extension.
func Save(path string, img image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return SavePNG(path, img)
	case ".pdf":
		return SavePDF(path, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	p, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand %q: %w", path, err)
	}
	if err := imgio.Save(p, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}

// SavePDF writes img to path as a one-page PDF whose page matches the
// image size at PDFDPI.
func SavePDF(path string, img image.Image) error {
	p, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand %q: %w", path, err)
	}
	pdf, err := buildPDF(img)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(p); err != nil {
		return fmt.Errorf("save pdf: %w", err)
	}
	return nil
}

func buildPDF(img image.Image) (*gofpdf.Fpdf, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("save pdf: empty image")
	}
	wd := float64(b.Dx()) * 72 / PDFDPI
	ht := float64(b.Dy()) * 72 / PDFDPI

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("encode pdf image: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("canvas", opts, &buf)
	pdf.ImageOptions("canvas", 0, 0, wd, ht, false, opts, 0, "")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return pdf, nil
}
