package render

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/planararm/kinematics"
)

func TestNewImageRendererDefaults(t *testing.T) {
	r := NewImageRenderer(0, -1, 0)
	test.That(t, r.Width, test.ShouldEqual, DefaultWidth)
	test.That(t, r.Height, test.ShouldEqual, DefaultHeight)
	test.That(t, r.Scale, test.ShouldEqual, DefaultScale)
	test.That(t, r.LinkLength, test.ShouldEqual, kinematics.DefaultLinkLength)

	r = NewImageRenderer(100, 50, 10)
	test.That(t, r.Width, test.ShouldEqual, 100)
	test.That(t, r.Height, test.ShouldEqual, 50)
	test.That(t, r.Scale, test.ShouldEqual, 10.0)
}

func TestRender(t *testing.T) {
	poses, err := kinematics.SolvePose(make([]float64, 6))
	test.That(t, err, test.ShouldBeNil)

	r := NewImageRenderer(320, 240, 1000)
	r.Labels = false
	img := r.RenderPoses(poses)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 320)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 240)

	// Corner is background and the base disc is at the origin.
	test.That(t, color.RGBAModel.Convert(img.At(0, 0)), test.ShouldResemble, color.RGBA{255, 255, 255, 255})
	test.That(t, color.RGBAModel.Convert(img.At(160, 120)), test.ShouldResemble, baseColor)

	// Segment 1 starts at its solved position.
	x, y := r.toPixel(poses[1].Position)
	test.That(t, color.RGBAModel.Convert(img.At(int(x), int(y))), test.ShouldNotResemble, color.RGBA{255, 255, 255, 255})
}

func TestToPixel(t *testing.T) {
	r := NewImageRenderer(200, 100, 1000)
	x, y := r.toPixel(kinematics.SegmentPose{}.Position)
	test.That(t, x, test.ShouldEqual, 100.0)
	test.That(t, y, test.ShouldEqual, 50.0)

	poses, err := kinematics.SolvePose(make([]float64, 6))
	test.That(t, err, test.ShouldBeNil)
	x, y = r.toPixel(poses[5].Position)
	test.That(t, x, test.ShouldAlmostEqual, 100.0, 1e-3)
	test.That(t, y, test.ShouldBeLessThan, 50.0)
}

func TestSubChainColors(t *testing.T) {
	test.That(t, subChainColor(1), test.ShouldNotResemble, subChainColor(3))
	test.That(t, subChainColor(3), test.ShouldNotResemble, subChainColor(5))
	test.That(t, subChainColor(1), test.ShouldNotResemble, subChainColor(2))
}

func TestEncodeAndSavePNG(t *testing.T) {
	poses, err := kinematics.SolvePose([]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5})
	test.That(t, err, test.ShouldBeNil)
	r := NewImageRenderer(64, 48, 200)

	var buf bytes.Buffer
	test.That(t, EncodePNG(&buf, r.RenderPoses(poses)), test.ShouldBeNil)
	decoded, err := png.Decode(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded.Bounds().Dx(), test.ShouldEqual, 64)

	path := filepath.Join(t.TempDir(), "frame.png")
	test.That(t, r.SavePNG(path, poses), test.ShouldBeNil)
	f, err := os.Open(path)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	decoded, err = png.Decode(f)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded.Bounds().Dy(), test.ShouldEqual, 48)
}
