package tierlist

import (
	"image"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const minFontSize = 10

// CardRenderer draws labelled course cards. FontPaths are probed in order;
// the first readable face wins. With no usable face the renderer falls back
// to the built-in fixed-size glyphs.
type CardRenderer struct {
	FontPaths []string
}

// DefaultFontPaths mirror the platforms the app historically ran on.
var DefaultFontPaths = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Light.ttc",
}

// NewCardRenderer builds a renderer, substituting DefaultFontPaths when no
// explicit paths are configured.
func NewCardRenderer(fontPaths []string) *CardRenderer {
	if len(fontPaths) == 0 {
		fontPaths = DefaultFontPaths
	}
	return &CardRenderer{FontPaths: fontPaths}
}

func (r *CardRenderer) fontPath() string {
	for _, p := range r.FontPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// setFittedFont shrinks the font size from initial until the text fits the
// given box, flooring at minFontSize. It returns the measured text height.
// When no font file is available the fixed basicfont face is used as-is.
func (r *CardRenderer) setFittedFont(dc *gg.Context, text string, maxW, maxH, initial float64) float64 {
	path := r.fontPath()
	if path == "" {
		dc.SetFontFace(basicfont.Face7x13)
		_, h := dc.MeasureString(text)
		return h
	}
	for size := initial; size >= minFontSize; size -= 2 {
		if err := dc.LoadFontFace(path, size); err != nil {
			dc.SetFontFace(basicfont.Face7x13)
			_, h := dc.MeasureString(text)
			return h
		}
		w, h := dc.MeasureString(text)
		if w < maxW && h < maxH {
			return h
		}
	}
	return maxH
}

// Render draws a square card for the label. The label splits on its last
// space into a course line and a teacher line; a label without a space gets
// a single centered line.
func (r *CardRenderer) Render(label string, size int) image.Image {
	dc := gg.NewContext(size, size)
	dc.SetRGBA255(245, 245, 245, 255)
	dc.Clear()
	dc.SetRGBA255(50, 50, 50, 255)
	dc.SetLineWidth(3)
	dc.DrawRectangle(1, 1, float64(size)-2, float64(size)-2)
	dc.Stroke()

	course := label
	teacher := ""
	if i := strings.LastIndex(label, " "); i > 0 {
		course, teacher = label[:i], label[i+1:]
	}

	s := float64(size)
	padding := 8.0
	targetW := s - padding*2

	hCourse := r.setFittedFont(dc, course, targetW, s*0.6, s*0.45)
	dc.SetRGB255(0, 0, 0)
	dc.DrawStringAnchored(course, s/2, s*0.55/2+hCourse/4, 0.5, 0.5)

	if teacher != "" {
		r.setFittedFont(dc, teacher, targetW, s*0.3, s*0.25)
		dc.SetRGB255(80, 80, 80)
		dc.DrawStringAnchored(teacher, s/2, s*0.75, 0.5, 0.5)
	}
	return dc.Image()
}
