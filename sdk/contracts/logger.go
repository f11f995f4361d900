package contracts

import "time"

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	// DebugLevel is for detailed traces such as individual MIDI packets or analysis frames.
	DebugLevel LogLevel = iota + 1
	// InfoLevel reports device selection, capture start/stop and listen sessions.
	InfoLevel
	// WarnLevel reports recoverable problems such as dropped packets.
	WarnLevel
	// ErrorLevel reports failures returned to the caller.
	ErrorLevel
	// FatalLevel logs and terminates the process.
	FatalLevel
)

// LogDestination specifies where the log messages should be directed.
type LogDestination string

const (
	// ConsoleLog directs log messages to stderr.
	ConsoleLog LogDestination = "console"
	// FileLog directs log messages to a file.
	FileLog LogDestination = "file"
)

// Field builds a structured log field. Each builder returns a new Field.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Strings(key string, val []string) Field
	Time(key string, val time.Time) Field
	Duration(key string, val time.Duration) Field
	Int64(key string, val int64) Field
	Error(key string, val error) Field
	Uint64(key string, val uint64) Field
	Uint8(key string, val uint8) Field
}

// Logger records messages with structured fields.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
	SetDestination(dest LogDestination, filePath ...string) error
}
