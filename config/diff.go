package config

import (
	"encoding/json"
	"reflect"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// A Diff is the difference between two configs, left and right where left is usually old and
// right is new.
type Diff struct {
	Left, Right *Config
	// ArmRebuild is set when the arm must be closed and built again.
	ArmRebuild bool
	// ArmAttributesChanged is set when only the attributes of the same arm changed.
	ArmAttributesChanged bool
	RenderEqual          bool
	NetworkEqual         bool
	LoggingEqual         bool
	LogFileEqual         bool
	PrettyDiff           string
}

// DiffConfigs returns the difference between the two given configs from left to right.
func DiffConfigs(left, right *Config) (*Diff, error) {
	pretty, err := prettyDiff(left, right)
	if err != nil {
		return nil, err
	}
	diff := &Diff{
		Left:         left,
		Right:        right,
		RenderEqual:  left.Render == right.Render,
		NetworkEqual: left.Network == right.Network,
		LoggingEqual: left.Debug == right.Debug && left.LogLevel == right.LogLevel,
		LogFileEqual: left.LogFile == right.LogFile,
		PrettyDiff:   pretty,
	}
	if left.Arm.Name != right.Arm.Name || left.Arm.Model != right.Arm.Model {
		diff.ArmRebuild = true
	} else if !reflect.DeepEqual(left.Arm.Attributes, right.Arm.Attributes) {
		diff.ArmAttributesChanged = true
	}
	return diff, nil
}

// Equal reports whether nothing changed.
func (diff *Diff) Equal() bool {
	return !diff.ArmRebuild && !diff.ArmAttributesChanged && diff.RenderEqual && diff.NetworkEqual && diff.LoggingEqual && diff.LogFileEqual
}

// String returns a pretty version of the diff.
func (diff *Diff) String() string {
	return diff.PrettyDiff
}

func prettyDiff(left, right *Config) (string, error) {
	leftMd, err := json.MarshalIndent(left, "", " ")
	if err != nil {
		return "", err
	}
	rightMd, err := json.MarshalIndent(right, "", " ")
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(leftMd), string(rightMd), true)
	filteredDiffs := make([]diffmatchpatch.Diff, 0, len(diffs))
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		filteredDiffs = append(filteredDiffs, d)
	}
	return dmp.DiffPrettyText(filteredDiffs), nil
}
