package logging

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the time layout of test log lines.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// testAppender writes through tb.Log so every line is attributed to the test that produced it.
type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender that logs to tb.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb}
}

func (app *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	app.tb.Helper()
	parts := []string{
		entry.Time.Format(DefaultTimeFormatStr),
		strings.ToUpper(entry.Level.String()),
		entry.LoggerName,
	}
	if entry.Caller.Defined {
		dir, file := filepath.Split(entry.Caller.File)
		parts = append(parts, fmt.Sprintf("%s:%d", filepath.Join(filepath.Base(dir), file), entry.Caller.Line))
	}
	parts = append(parts, entry.Message)

	var err error
	if len(fields) > 0 {
		// an empty entry leaves only the fields in the encoded JSON
		enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
		buf, encErr := enc.EncodeEntry(zapcore.Entry{}, fields)
		if encErr == nil {
			parts = append(parts, buf.String())
			buf.Free()
		}
		err = encErr
	}
	app.tb.Log(strings.Join(parts, "\t"))
	return err
}

func (app *testAppender) Sync() error {
	return nil
}
