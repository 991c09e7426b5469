package tierlist

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Default dimensions for a synthesized blank canvas.
const (
	blankWidth  = 1200
	blankHeight = 750
)

var rowColors = [5]color.NRGBA{
	{255, 127, 127, 255}, // S
	{255, 191, 127, 255}, // A
	{255, 255, 127, 255}, // B
	{127, 255, 127, 255}, // C
	{127, 191, 255, 255}, // D
}

// DecodeCanvas parses PNG bytes into a mutable RGBA image.
func DecodeCanvas(data []byte) (*image.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode canvas: %w", err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// EncodeCanvas serializes a canvas back to PNG bytes.
func EncodeCanvas(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadTemplate reads a template canvas from disk.
func LoadTemplate(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeCanvas(data)
}

// BlankCanvas synthesizes a five-row canvas with colored tier bands and the
// tier letter drawn in the left margin of each band.
func BlankCanvas() *image.RGBA {
	dc := gg.NewContext(blankWidth, blankHeight)
	rowH := float64(blankHeight) / 5
	labelW := float64(blankWidth) * 0.1
	for i, t := range Tiers {
		c := rowColors[i]
		y := float64(i) * rowH
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), 255)
		dc.DrawRectangle(0, y, labelW, rowH)
		dc.Fill()
		dc.SetRGBA255(30, 30, 30, 255)
		dc.DrawRectangle(labelW, y, float64(blankWidth)-labelW, rowH)
		dc.Fill()
		dc.SetRGBA255(0, 0, 0, 255)
		dc.SetFontFace(basicfont.Face7x13)
		dc.DrawStringAnchored(string(t), labelW/2, y+rowH/2, 0.5, 0.5)
	}
	// row separators
	dc.SetRGBA255(0, 0, 0, 255)
	dc.SetLineWidth(2)
	for i := 1; i < 5; i++ {
		y := float64(i) * rowH
		dc.DrawLine(0, y, float64(blankWidth), y)
		dc.Stroke()
	}
	rgba := image.NewRGBA(image.Rect(0, 0, blankWidth, blankHeight))
	draw.Draw(rgba, rgba.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return rgba
}

// Composite alpha-blends the card onto the canvas at (x, y).
func Composite(canvas *image.RGBA, card image.Image, x, y int) {
	r := card.Bounds()
	target := image.Rect(x, y, x+r.Dx(), y+r.Dy())
	draw.Draw(canvas, target, card, r.Min, draw.Over)
}
