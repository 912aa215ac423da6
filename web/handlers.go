package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	pb "go.viam.com/api/component/arm/v1"

	"go.viam.com/planararm/kinematics"
	"go.viam.com/planararm/referenceframe"
	"go.viam.com/planararm/render"
)

// Units accepted for submitted joint angles.
const (
	UnitsRadians = "radians"
	UnitsDegrees = "degrees"
)

// maxBodyBytes bounds request bodies; a joint submission is a few hundred bytes.
const maxBodyBytes = 1 << 16

// SubmitNumbersRequest is the body of a joint angle submission.
type SubmitNumbersRequest struct {
	Numbers []float64 `json:"numbers"`
	Units   string    `json:"units,omitempty"`
}

// MoveRequest is the body of an interpolated move.
type MoveRequest struct {
	SubmitNumbersRequest
	Steps int `json:"steps,omitempty"`
}

// SubmitNumberRequest is the body of a single number submission. The number may be sent as a
// JSON number or as a string.
type SubmitNumberRequest struct {
	Number json.RawMessage `json:"number"`
}

// MessageResponse carries a human readable result.
type MessageResponse struct {
	Message string `json:"message"`
}

// PosesResponse carries solved poses, optionally with a message.
type PosesResponse struct {
	Message string     `json:"message,omitempty"`
	Poses   []PoseJSON `json:"poses"`
}

// NumbersResponse carries joint angles in radians.
type NumbersResponse struct {
	Numbers []float64 `json:"numbers"`
}

// SegmentsResponse carries the segments as last drawn by the frame loop.
type SegmentsResponse struct {
	Applied  uint64        `json:"applied"`
	Segments []SegmentJSON `json:"segments"`
}

// ErrorResponse is returned with every non 2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// VectorJSON is a position.
type VectorJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// QuaternionJSON is a rotation.
type QuaternionJSON struct {
	Real float64 `json:"real"`
	Imag float64 `json:"imag"`
	Jmag float64 `json:"jmag"`
	Kmag float64 `json:"kmag"`
}

// PoseJSON is the wire form of one segment pose.
type PoseJSON struct {
	Segment    int            `json:"segment"`
	Name       string         `json:"name"`
	RotationZ  float64        `json:"rotation_z"`
	Position   VectorJSON     `json:"position"`
	Quaternion QuaternionJSON `json:"quaternion"`
}

// SegmentJSON is the wire form of a drawn segment.
type SegmentJSON struct {
	PoseJSON
	Posed bool `json:"posed"`
}

func poseToJSON(idx int, pose kinematics.SegmentPose) PoseJSON {
	q := pose.Quaternion()
	return PoseJSON{
		Segment:    idx,
		Name:       kinematics.SegmentName(idx),
		RotationZ:  pose.RotationZ,
		Position:   VectorJSON{X: pose.Position.X, Y: pose.Position.Y, Z: pose.Position.Z},
		Quaternion: QuaternionJSON{Real: q.Real, Imag: q.Imag, Jmag: q.Jmag, Kmag: q.Kmag},
	}
}

// PosesToJSON converts a pose set to its wire form.
func PosesToJSON(poses kinematics.PoseSet) []PoseJSON {
	out := make([]PoseJSON, len(poses))
	for i, pose := range poses {
		out[i] = poseToJSON(i, pose)
	}
	return out
}

// ParseAngles converts submitted numbers in the given units to radian inputs.
func ParseAngles(numbers []float64, units string) ([]referenceframe.Input, error) {
	if len(numbers) != kinematics.NumJoints {
		return nil, kinematics.NewInvalidAngleVectorError(len(numbers))
	}
	switch strings.ToLower(units) {
	case "", UnitsRadians:
		return referenceframe.FloatsToInputs(numbers), nil
	case UnitsDegrees:
		return referenceframe.InputsFromJointPositions(&pb.JointPositions{Values: numbers}, kinematics.NumJoints)
	default:
		return nil, errors.Errorf("unknown units %q, expected %q or %q", units, UnitsRadians, UnitsDegrees)
	}
}

// FormatAngles formats angles with two decimals.
func FormatAngles(angles []float64) string {
	parts := make([]string, len(angles))
	for i, a := range angles {
		parts[i] = strconv.FormatFloat(a, 'f', 2, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errchkjson
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.Wrap(err, "malformed request body")
	}
	return nil
}

func (svc *Service) handleSubmitNumbers(w http.ResponseWriter, r *http.Request) {
	var req SubmitNumbersRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	inputs, err := ParseAngles(req.Numbers, req.Units)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := svc.currentArm()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if err := a.MoveToJointPositions(r.Context(), inputs); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Solve the submitted angles themselves rather than whatever the arm reports by now.
	geometry, err := a.Geometry(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	solver, err := kinematics.NewSolver(geometry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	poses, err := solver.SolvePoseFromInputs(inputs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	radians := referenceframe.InputsToFloats(inputs)
	svc.logger.CDebugw(r.Context(), "joint angles submitted", "arm", a.Name(), "radians", FormatAngles(radians))
	writeJSON(w, http.StatusOK, PosesResponse{
		Message: fmt.Sprintf("Received joint angles %s", FormatAngles(radians)),
		Poses:   PosesToJSON(poses),
	})
}

func (svc *Service) handleSubmitNumber(w http.ResponseWriter, r *http.Request) {
	var req SubmitNumberRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	raw := bytes.TrimSpace(req.Number)
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(raw)
	}
	number, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Errorf("number %q is not a number", text))
		return
	}
	svc.logger.CDebugw(r.Context(), "number submitted", "number", number)
	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Received number %s", strconv.FormatFloat(number, 'f', 2, 64))})
}

func (svc *Service) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	target, err := ParseAngles(req.Numbers, req.Units)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Steps == 0 {
		req.Steps = 1
	}
	if req.Steps < 1 {
		writeError(w, http.StatusBadRequest, referenceframe.NewInterpolationStepsError(req.Steps))
		return
	}
	if req.Steps > referenceframe.MaxInterpolationSteps {
		writeError(w, http.StatusBadRequest, referenceframe.NewTooManyInterpolationStepsError(req.Steps))
		return
	}
	a, err := svc.currentArm()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	current, err := a.JointPositions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	path, err := referenceframe.InterpolationSteps(current, target, req.Steps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.MoveThroughJointPositions(r.Context(), path); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Moved through %d steps to %s", len(path), FormatAngles(referenceframe.InputsToFloats(target))),
	})
}

func (svc *Service) handleStop(w http.ResponseWriter, r *http.Request) {
	a, err := svc.currentArm()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if err := a.Stop(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "stopped"})
}

func (svc *Service) handleJoints(w http.ResponseWriter, r *http.Request) {
	a, err := svc.currentArm()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	joints, err := a.JointPositions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, NumbersResponse{Numbers: referenceframe.InputsToFloats(joints)})
}

func (svc *Service) handlePoses(w http.ResponseWriter, r *http.Request) {
	a, err := svc.currentArm()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	poses, err := a.SegmentPoses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, PosesResponse{Poses: PosesToJSON(poses)})
}

func (svc *Service) handleSegments(w http.ResponseWriter, r *http.Request) {
	svc.mu.RLock()
	segments := svc.segments
	svc.mu.RUnlock()
	if segments == nil {
		writeError(w, http.StatusNotFound, errors.New("no frame loop running"))
		return
	}
	snapshot := segments.Snapshot()
	resp := SegmentsResponse{Applied: segments.Applied(), Segments: make([]SegmentJSON, len(snapshot))}
	for i, seg := range snapshot {
		resp.Segments[i] = SegmentJSON{PoseJSON: poseToJSON(i, seg.Pose), Posed: seg.Posed}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (svc *Service) handleGeometry(w http.ResponseWriter, r *http.Request) {
	a, err := svc.currentArm()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	geometry, err := a.Geometry(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, geometry.Config())
}

func (svc *Service) handleFrame(w http.ResponseWriter, r *http.Request) {
	a, err := svc.currentArm()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	poses, err := a.SegmentPoses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	svc.mu.RLock()
	renderer := svc.renderer
	svc.mu.RUnlock()

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, renderer.Render(render.SegmentsFromPoses(poses))); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	//nolint:errcheck
	w.Write(buf.Bytes())
}
