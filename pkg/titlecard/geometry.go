package titlecard

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func metrics(face font.Face) (ascent, descent float64) {
	m := face.Metrics()
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

func floatRect(x0, y0, x1, y1 float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	)
}

// textRect 文字占用区域：行框（advance × ascent+descent）与实际字形墨迹的并集
func textRect(face font.Face, text string, x, baseline float64) image.Rectangle {
	ascent, descent := metrics(face)
	ink, advance := font.BoundString(face, text)

	line := floatRect(x, baseline-ascent, x+fixedToFloat(advance), baseline+descent)
	glyphs := floatRect(
		x+fixedToFloat(ink.Min.X), baseline+fixedToFloat(ink.Min.Y),
		x+fixedToFloat(ink.Max.X), baseline+fixedToFloat(ink.Max.Y),
	)
	if glyphs.Empty() {
		return line
	}
	return line.Union(glyphs)
}
