package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestFileAppender(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "planararm.log")
	appender := NewFileAppender(filename, 0, 0)
	test.That(t, appender.rotator.MaxSize, test.ShouldEqual, DefaultLogFileMaxSizeMB)
	test.That(t, appender.rotator.MaxBackups, test.ShouldEqual, DefaultLogFileMaxBackups)

	logger := NewBlankLogger("file")
	logger.AddAppender(appender)
	logger.Infow("joints set", "count", 6)
	test.That(t, appender.Close(), test.ShouldBeNil)

	contents, err := os.ReadFile(filename)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "INFO\tfile")
	test.That(t, string(contents), test.ShouldContainSubstring, "joints set")
	test.That(t, string(contents), test.ShouldContainSubstring, `{"count":6}`)
}
