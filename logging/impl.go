package logging

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled, named logger handed to every component constructor.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// CDebugf and CDebugw log at debug level when either the logger or the context has debug
	// enabled.
	CDebugf(ctx context.Context, template string, args ...interface{})
	CDebugw(ctx context.Context, msg string, keysAndValues ...interface{})

	SetLevel(level Level)
	GetLevel() Level
	Sublogger(subname string) Logger
	// With returns a logger that adds the key/value pairs to every entry. The level is shared
	// with the parent.
	With(keysAndValues ...interface{}) Logger
	AddAppender(appender Appender)
	Sync() error
}

type (
	impl struct {
		name   string
		level  AtomicLevel
		inUTC  bool
		fields []zapcore.Field

		appenders []Appender
	}

	// LogEntry embeds a zapcore Entry and slice of Fields.
	LogEntry struct {
		zapcore.Entry
		fields []zapcore.Field
	}
)

// callerSkip is the number of frames between getCaller and the code calling a Logger method:
// getCaller, entry, the print helper and the Logger method itself.
const callerSkip = 4

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return &impl{
		name:      name,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		fields:    imp.fields,
		appenders: imp.appenders,
	}
}

func (imp *impl) With(keysAndValues ...interface{}) Logger {
	fields := make([]zapcore.Field, 0, len(imp.fields)+len(keysAndValues)/2)
	fields = append(fields, imp.fields...)
	return &impl{
		name:      imp.name,
		level:     imp.level,
		inUTC:     imp.inUTC,
		fields:    append(fields, toFields(keysAndValues)...),
		appenders: imp.appenders,
	}
}

func (imp *impl) Sync() error {
	var errs []error
	for _, appender := range imp.appenders {
		errs = append(errs, appender.Sync())
	}
	return multierr.Combine(errs...)
}

// entry starts an entry at level with the logger's persistent fields.
func (imp *impl) entry(level Level, msg string, fields []zapcore.Field) *LogEntry {
	e := &LogEntry{fields: append(append([]zapcore.Field(nil), imp.fields...), fields...)}
	e.Time = time.Now()
	if imp.inUTC {
		e.Time = e.Time.UTC()
	}
	e.LoggerName = imp.name
	e.Level = level.AsZap()
	e.Message = msg
	e.Caller = getCaller()
	return e
}

func (imp *impl) write(e *LogEntry) {
	for _, appender := range imp.appenders {
		if err := appender.Write(e.Entry, e.fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

func (imp *impl) enabled(level Level, force bool) bool {
	return force || level >= imp.level.Get()
}

func (imp *impl) print(level Level, args ...interface{}) {
	if imp.enabled(level, false) {
		imp.write(imp.entry(level, fmt.Sprint(args...), nil))
	}
}

func (imp *impl) printf(level Level, force bool, template string, args ...interface{}) {
	if imp.enabled(level, force) {
		imp.write(imp.entry(level, fmt.Sprintf(template, args...), nil))
	}
}

func (imp *impl) printw(level Level, force bool, msg string, keysAndValues ...interface{}) {
	if imp.enabled(level, force) {
		imp.write(imp.entry(level, msg, toFields(keysAndValues)))
	}
}

// toFields pairs up keys and values. A trailing key without a value gets an error value so the
// mistake shows up in the output.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func (imp *impl) Debug(args ...interface{}) { imp.print(DEBUG, args...) }

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.printf(DEBUG, false, template, args...)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.printw(DEBUG, false, msg, keysAndValues...)
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	imp.printf(DEBUG, IsDebugMode(ctx), template, args...)
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	imp.printw(DEBUG, IsDebugMode(ctx), msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) { imp.print(INFO, args...) }

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.printf(INFO, false, template, args...)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.printw(INFO, false, msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) { imp.print(WARN, args...) }

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.printf(WARN, false, template, args...)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.printw(WARN, false, msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) { imp.print(ERROR, args...) }

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.printf(ERROR, false, template, args...)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.printw(ERROR, false, msg, keysAndValues...)
}

// getCaller returns the file and line of the code that called the Logger method.
func getCaller() zapcore.EntryCaller {
	var caller zapcore.EntryCaller
	var ok bool
	caller.PC, caller.File, caller.Line, ok = runtime.Caller(callerSkip)
	if !ok {
		return caller
	}
	caller.Defined = true
	if fn := runtime.FuncForPC(caller.PC); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
