package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"go.viam.com/planararm/kinematics"
)

// Defaults for ImageRenderer.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
	// DefaultScale is in pixels per meter.
	DefaultScale = 1500.0
)

var font *truetype.Font

func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

var (
	backgroundColor = color.White
	baseColor       = color.RGBA{100, 100, 100, 255}
	axisColor       = color.RGBA{220, 220, 220, 255}
)

// subChainColor spreads the sub-chains evenly around the hue wheel. The distal link of a
// sub-chain is drawn darker than its proximal link.
func subChainColor(segment int) color.Color {
	chain := (segment - 1) / 2
	value := 0.9
	if segment%2 == 0 {
		value = 0.6
	}
	return colorful.Hsv(float64(chain)*360/kinematics.NumSubChains, 0.8, value)
}

// ImageRenderer draws segments as a top down view of the z=0 plane.
type ImageRenderer struct {
	Width, Height int
	Scale         float64
	LinkLength    float64
	Labels        bool
}

// NewImageRenderer returns a renderer with the given size. Non positive values fall back to the
// defaults.
func NewImageRenderer(width, height int, scale float64) *ImageRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if scale <= 0 {
		scale = DefaultScale
	}
	return &ImageRenderer{
		Width:      width,
		Height:     height,
		Scale:      scale,
		LinkLength: kinematics.DefaultLinkLength,
		Labels:     true,
	}
}

// toPixel maps plane coordinates to pixels, with y up and the origin centered.
func (r *ImageRenderer) toPixel(p r3.Vector) (float64, float64) {
	return float64(r.Width)/2 + p.X*r.Scale, float64(r.Height)/2 - p.Y*r.Scale
}

// Render draws the segments. Every segment is a link starting at its position and pointing along
// its rotation. The base is a filled disc.
func (r *ImageRenderer) Render(segments []Segment) image.Image {
	dc := gg.NewContext(r.Width, r.Height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	cx, cy := r.toPixel(r3.Vector{})
	dc.SetColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawLine(0, cy, float64(r.Width), cy)
	dc.DrawLine(cx, 0, cx, float64(r.Height))
	dc.Stroke()

	if r.Labels {
		dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 10}))
	}
	for i, seg := range segments {
		x0, y0 := r.toPixel(seg.Pose.Position)
		if i == 0 {
			dc.SetColor(baseColor)
			dc.DrawCircle(x0, y0, r.LinkLength*r.Scale/4)
			dc.Fill()
			continue
		}
		tip := seg.Pose.Position.Add(r3.Vector{
			X: r.LinkLength * math.Cos(seg.Pose.RotationZ),
			Y: r.LinkLength * math.Sin(seg.Pose.RotationZ),
		})
		x1, y1 := r.toPixel(tip)

		dc.SetColor(subChainColor(i))
		dc.SetLineWidth(4)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
		dc.DrawCircle(x0, y0, 3)
		dc.Fill()

		if r.Labels {
			dc.SetColor(color.Black)
			dc.DrawStringAnchored(seg.Name, x0, y0-6, 0.5, 0)
		}
	}
	return dc.Image()
}

// RenderPoses draws a solved pose set.
func (r *ImageRenderer) RenderPoses(poses kinematics.PoseSet) image.Image {
	return r.Render(SegmentsFromPoses(poses))
}

// EncodePNG writes img to w as a PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return errors.Wrap(png.Encode(w, img), "error encoding png")
}

// SavePNG renders poses into a PNG file at path.
func (r *ImageRenderer) SavePNG(path string, poses kinematics.PoseSet) error {
	return errors.Wrapf(gg.SavePNG(path, r.RenderPoses(poses)), "error saving %q", path)
}
