package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of zap.
type ZapLogger struct {
	mu     sync.RWMutex
	logger *zap.Logger
	level  zap.AtomicLevel
	file   *os.File // Current file sink, nil when writing to stderr.
	path   string
}

// NewZapLogger creates a production zap logger writing JSON to stderr.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return &ZapLogger{logger: newCore(level, zapcore.Lock(os.Stderr)), level: level}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() contracts.Logger {
	return &ZapLogger{logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// New wraps an existing zap logger. SetLevel can only raise the level above
// the one l was built with.
func New(l *zap.Logger) contracts.Logger {
	level := zap.NewAtomicLevelAt(l.Level())
	return &ZapLogger{logger: l.WithOptions(zap.IncreaseLevel(level)), level: level}
}

func newCore(level zap.AtomicLevel, out zapcore.WriteSyncer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), out, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.get().Info(msg, toZap(fields)...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.get().Error(msg, toZap(fields)...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.get().Debug(msg, toZap(fields)...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.get().Warn(msg, toZap(fields)...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.get().Fatal(msg, toZap(fields)...)
}

// Field returns a field builder.
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel sets the logging level
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(toZapLevel(level))
}

// SetDestination redirects output to stderr or to a file opened for appending.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) error {
	var (
		out  zapcore.WriteSyncer
		file *os.File
		path string
	)
	switch dest {
	case contracts.ConsoleLog:
		out = zapcore.Lock(os.Stderr)
	case contracts.FileLog:
		if len(filePath) == 0 || filePath[0] == "" {
			return fmt.Errorf("file destination requires a path")
		}
		if z.writesTo(filePath[0]) {
			return nil
		}
		f, err := os.OpenFile(filePath[0], os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = zapcore.AddSync(f)
		file, path = f, filePath[0]
	default:
		return fmt.Errorf("unknown log destination %q", dest)
	}

	z.mu.Lock()
	_ = z.logger.Sync()
	old := z.file
	z.logger = newCore(z.level, out)
	z.file, z.path = file, path
	z.mu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

// writesTo reports whether the logger already appends to path.
func (z *ZapLogger) writesTo(path string) bool {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.file != nil && z.path == path
}

func (z *ZapLogger) get() *zap.Logger {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.logger
}

func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZap(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(zapField); ok && zf.field.Key != "" {
			out = append(out, zf.field)
		}
	}
	return out
}

// zapField implements contracts.Field
type zapField struct {
	field zap.Field
}

func (zapField) Bool(key string, val bool) contracts.Field {
	return zapField{zap.Bool(key, val)}
}

func (zapField) Int(key string, val int) contracts.Field {
	return zapField{zap.Int(key, val)}
}

func (zapField) Float64(key string, val float64) contracts.Field {
	return zapField{zap.Float64(key, val)}
}

func (zapField) String(key string, val string) contracts.Field {
	return zapField{zap.String(key, val)}
}

func (zapField) Strings(key string, val []string) contracts.Field {
	return zapField{zap.Strings(key, val)}
}

func (zapField) Time(key string, val time.Time) contracts.Field {
	return zapField{zap.Time(key, val)}
}

func (zapField) Duration(key string, val time.Duration) contracts.Field {
	return zapField{zap.Duration(key, val)}
}

func (zapField) Int64(key string, val int64) contracts.Field {
	return zapField{zap.Int64(key, val)}
}

func (zapField) Error(key string, val error) contracts.Field {
	return zapField{zap.NamedError(key, val)}
}

func (zapField) Uint64(key string, val uint64) contracts.Field {
	return zapField{zap.Uint64(key, val)}
}

func (zapField) Uint8(key string, val uint8) contracts.Field {
	return zapField{zap.Uint8(key, val)}
}
