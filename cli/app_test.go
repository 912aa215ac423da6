package cli

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/planararm/kinematics"
	"go.viam.com/planararm/web"
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"planararm"}, args...))
	return out.String(), errOut.String(), err
}

func TestSolveTable(t *testing.T) {
	out, _, err := runApp(t, "solve", "0", "0", "0", "0", "0", "0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "ROTATION (RAD)")
	for i := 0; i < kinematics.NumSegments; i++ {
		test.That(t, out, test.ShouldContainSubstring, kinematics.SegmentName(i))
	}
	test.That(t, out, test.ShouldContainSubstring, "-1.0472")
	test.That(t, out, test.ShouldContainSubstring, "2.0944")
	test.That(t, out, test.ShouldContainSubstring, "-60.00")
}

func TestSolveJSON(t *testing.T) {
	out, _, err := runApp(t, "solve", "--json", "--degrees", "90", "0", "0", "0", "0", "0")
	test.That(t, err, test.ShouldBeNil)

	var resp web.PosesResponse
	test.That(t, json.Unmarshal([]byte(out), &resp), test.ShouldBeNil)
	test.That(t, len(resp.Poses), test.ShouldEqual, kinematics.NumSegments)
	test.That(t, resp.Poses[1].RotationZ, test.ShouldAlmostEqual, 1.5707963267948966-1.0472)
	test.That(t, resp.Poses[3].RotationZ, test.ShouldEqual, -2.0944)
	test.That(t, resp.Poses[0].Position.X, test.ShouldEqual, 0.0)
}

func TestSolveErrors(t *testing.T) {
	_, _, err := runApp(t, "solve", "1", "2", "3", "4", "5")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid angle vector length")

	_, _, err = runApp(t, "solve", "1", "2", "3", "4", "5", "x")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `joint angle 5: "x" is not a number`)

	_, _, err = runApp(t, "solve", "1", "2", "3", "4", "5", "NaN")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "must be finite")

	_, _, err = runApp(t, "solve", "--model-path", "missing.json", "0", "0", "0", "0", "0", "0")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSolveDebugLogs(t *testing.T) {
	_, errOut, err := runApp(t, "--debug", "solve", "0", "0", "0", "0", "0", "0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "solved")
	test.That(t, errOut, test.ShouldContainSubstring, "vinci-arm")

	_, errOut, err = runApp(t, "solve", "0", "0", "0", "0", "0", "0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldBeEmpty)
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.png")
	_, errOut, err := runApp(t, "render", "--out", path, "--width", "120", "--height", "80", "0.1", "0.2", "0.3", "0.4", "0.5", "0.6")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "frame written")

	f, err := os.Open(path)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	img, err := png.Decode(f)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 120)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 80)

	_, _, err = runApp(t, "render", "0", "0", "0", "0", "0", "0")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPoseTable(t *testing.T) {
	poses, err := kinematics.SolvePose(make([]float64, 6))
	test.That(t, err, test.ShouldBeNil)
	table := PoseTable(poses)
	test.That(t, table, test.ShouldContainSubstring, "arm6")
	test.That(t, table, test.ShouldContainSubstring, "0.1291")
}

func TestSchema(t *testing.T) {
	for target, property := range map[string]string{
		"config":    `"bind_address"`,
		"geometry":  `"sub_chains"`,
		"fake":      `"initial-joints"`,
		"simulated": `"speed"`,
	} {
		out, _, err := runApp(t, "schema", target)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, property)
		test.That(t, json.Valid([]byte(out)), test.ShouldBeTrue)
	}

	_, _, err := runApp(t, "schema", "gantry")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `no schema for "gantry"`)

	_, _, err = runApp(t, "schema")
	test.That(t, err, test.ShouldNotBeNil)
}
