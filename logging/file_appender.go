package logging

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// Defaults for rotated log files.
const (
	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
)

// FileAppender writes human readable logs to a file that is rotated once it grows past a size.
type FileAppender struct {
	ConsoleAppender
	rotator *lumberjack.Logger
}

// NewFileAppender creates an appender writing to filename. Non-positive limits fall back to the
// defaults. Rotated files are compressed.
func NewFileAppender(filename string, maxSizeMB, maxBackups int) *FileAppender {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultLogFileMaxSizeMB
	}
	if maxBackups <= 0 {
		maxBackups = DefaultLogFileMaxBackups
	}
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	return &FileAppender{ConsoleAppender: NewWriterAppender(rotator), rotator: rotator}
}

// Close closes the current file. A later write reopens it.
func (appender *FileAppender) Close() error {
	return appender.rotator.Close()
}
