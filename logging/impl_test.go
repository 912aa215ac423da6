package logging

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

type jointReading struct {
	Joint int
	Value float64
	unit  string
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. It expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// Use the length of the first string as a weak verification that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])

	actualFilename, actualLineNumber, found := strings.Cut(actualParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	for idx := 3; idx < len(expectedParts); idx++ {
		test.That(t, actualParts[idx], test.ShouldEqual, expectedParts[idx])
	}
}

func newBufferLogger(level Level) (*impl, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &impl{"", NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(buf)}}, buf
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, buf := newBufferLogger(DEBUG)

	logger.Info("solved pose")
	assertLogMatches(t, buf,
		`2023-10-30T17:20:47.129Z	INFO	logging/impl_test.go:60	solved pose`)

	logger.Debugf("segment %d", 3)
	assertLogMatches(t, buf,
		`2023-10-30T17:20:47.129Z	DEBUG	logging/impl_test.go:64	segment 3`)

	// Only public fields are serialized.
	logger.Infow("joint", "reading", jointReading{Joint: 2, Value: 0.5, unit: "rad"})
	assertLogMatches(t, buf,
		`2023-10-30T17:20:47.129Z	INFO	logging/impl_test.go:69	joint	{"reading":{"Joint":2,"Value":0.5}}`)

	logger.Warnw("unpaired", "lonely")
	assertLogMatches(t, buf,
		`2023-10-30T17:20:47.129Z	WARN	logging/impl_test.go:73	unpaired	{"lonely":"unpaired log key"}`)
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Infow("dropped", "k", "v")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Error("kept")
	test.That(t, buf.String(), test.ShouldContainSubstring, "kept")

	buf.Reset()
	logger.SetLevel(INFO)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)
	logger.Info("now kept")
	test.That(t, buf.String(), test.ShouldContainSubstring, "now kept")
}

func TestContextDebugMode(t *testing.T) {
	logger, buf := newBufferLogger(INFO)

	logger.CDebugw(context.Background(), "not shown")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	ctx := EnableDebugMode(context.Background(), "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, len(GetName(ctx)), test.ShouldEqual, 6)

	logger.CDebugw(ctx, "shown", "segment", 1)
	test.That(t, buf.String(), test.ShouldContainSubstring, "shown")

	ctx = EnableDebugMode(context.Background(), "frame")
	test.That(t, GetName(ctx), test.ShouldEqual, "frame")
}

func TestSublogger(t *testing.T) {
	logger, buf := newBufferLogger(DEBUG)
	logger.name = "planararm"

	sub := logger.Sublogger("web")
	sub.Info("hello")
	test.That(t, buf.String(), test.ShouldContainSubstring, "\tplanararm.web\t")

	test.That(t, NewBlankLogger("").Sublogger("arm").(*impl).name, test.ShouldEqual, "arm")
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("applied pose", "segments", 7)
	logger.Sublogger("render").Warn("slow frame")

	test.That(t, logs.FilterMessage("applied pose").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("applied pose").All()[0].ContextMap()["segments"], test.ShouldEqual, int64(7))
	test.That(t, logs.FilterLoggerName("render").Len(), test.ShouldEqual, 1)
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldBeError)

	var level Level
	test.That(t, level.UnmarshalJSON([]byte(`"error"`)), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, ERROR)
	out, err := WARN.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"warn"`)
}
