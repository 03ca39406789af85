// internal/sharecard/card.go
//
// PNG share cards.
// Renders a share (title + text) onto a fixed-width card: bold title, mono
// body lines word-wrapped to the card width, hashtags footer. Used as the Discord embed image and served
// at GET /share/card.png.

package sharecard

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/robalobadob/emode/internal/progress"
)

const (
	width      = 480
	padding    = 24
	titleSize  = 22
	bodySize   = 14
	lineHeight = 22
	minHeight  = 240
)

// Render draws s as a PNG.
func Render(s progress.Share) ([]byte, error) {
	titleFace, err := loadFont(gobold.TTF, titleSize)
	if err != nil {
		return nil, fmt.Errorf("title font: %w", err)
	}
	bodyFace, err := loadFont(gomono.TTF, bodySize)
	if err != nil {
		return nil, fmt.Errorf("body font: %w", err)
	}

	lines := wrap(bodyFace, s.Text)
	height := max(minHeight, padding*3+titleSize+len(lines)*lineHeight)

	dc := gg.NewContext(width, height)

	// vertical gradient, deep violet to near black
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		dc.SetRGB(0.18-t*0.14, 0.08-t*0.05, 0.30-t*0.22)
		dc.DrawLine(0, float64(y), width, float64(y))
		dc.Stroke()
	}

	dc.SetFontFace(titleFace)
	dc.SetRGB(0.95, 0.9, 1)
	dc.DrawString(s.Title, padding, padding+titleSize)

	dc.SetFontFace(bodyFace)
	y := float64(padding*2 + titleSize)
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			dc.SetRGB(0.66, 0.55, 0.98)
		} else {
			dc.SetRGB(0.88, 0.88, 0.92)
		}
		dc.DrawString(line, padding, y)
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrap splits text into lines that fit between the paddings in face.
// Blank lines are kept.
func wrap(face font.Face, text string) []string {
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	var out []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			out = append(out, line)
			continue
		}
		out = append(out, dc.WordWrap(line, width-2*padding)...)
	}
	return out
}

func loadFont(data []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}
