// Package logger provides structured logging with verbosity control.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Level represents logging verbosity.
type Level int

// Log levels.
const (
	LevelInfo Level = iota
	LevelDebug
)

// OutputFormat represents the output format.
type OutputFormat int

// Output formats.
const (
	FormatText OutputFormat = iota
	FormatJSON
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// LogEntry represents a structured log entry for JSON output.
type LogEntry struct {
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
}

// Logger provides structured logging with verbosity control. Hook output
// goes to stdout; rejection messages go to stderr so git relays them to
// the committer or pusher.
type Logger struct {
	out     io.Writer
	errOut  io.Writer
	level   Level
	format  OutputFormat
	noColor bool
}

// Options configures the logger.
type Options struct {
	Verbose bool
	JSON    bool
	NoColor bool
}

// New creates a new logger with options.
func New(opts Options) *Logger {
	level := LevelInfo
	if opts.Verbose {
		level = LevelDebug
	}
	format := FormatText
	if opts.JSON {
		format = FormatJSON
	}
	return &Logger{
		out:     os.Stdout,
		errOut:  os.Stderr,
		level:   level,
		format:  format,
		noColor: opts.NoColor || opts.JSON, // No color in JSON mode
	}
}

// SetOutput redirects both output streams, for tests.
func (l *Logger) SetOutput(out, errOut io.Writer) {
	l.out = out
	l.errOut = errOut
}

// Info logs informational messages (always shown).
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Debug logs debug messages (only in verbose mode).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LevelDebug {
		l.log(LevelDebug, format, args...)
	}
}

// Error logs error messages to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.format == FormatJSON {
		l.writeJSON(l.errOut, "error", msg, nil)
	} else {
		coloredLevel := l.colorize(colorRed, "ERROR")
		fmt.Fprintf(l.errOut, "%s %s\n", coloredLevel, msg)
	}
}

// Warn logs warning messages (yellow in text mode).
func (l *Logger) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.format == FormatJSON {
		l.writeJSON(l.out, "warn", msg, nil)
	} else {
		fmt.Fprintf(l.out, "%s\n", l.colorize(colorYellow, "! "+msg))
	}
}

// Checking logs a per-file progress line during validation.
func (l *Logger) Checking(path string) {
	l.Info("Checking file %s", path)
}

// Violation logs a single validation violation to stderr. The optional
// detail carries verbatim output of an external checker.
func (l *Logger) Violation(path, message, detail string) {
	if l.format == FormatJSON {
		data := map[string]interface{}{"file": path}
		if detail != "" {
			data["detail"] = detail
		}
		l.writeJSON(l.errOut, "error", message, data)
		return
	}
	head := message
	if path != "" {
		head = path + ": " + message
	}
	fmt.Fprintf(l.errOut, "%s\n", l.colorize(colorRed, head))
	if detail != "" {
		fmt.Fprintf(l.errOut, "\n%s\n\n", detail)
	}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.format == FormatJSON {
		levelStr := "info"
		if level == LevelDebug {
			levelStr = "debug"
		}
		l.writeJSON(l.out, levelStr, msg, nil)
	} else {
		if level == LevelDebug {
			// Gray color for debug messages
			msg = l.colorize(colorGray, msg)
		}
		fmt.Fprintf(l.out, "%s\n", msg)
	}
}

func (l *Logger) colorize(color, text string) string {
	if l.noColor {
		return text
	}
	return color + text + colorReset
}

func (l *Logger) writeJSON(out io.Writer, level, message string, data map[string]interface{}) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   message,
		Data:      data,
	}
	jsonData, err := json.Marshal(entry)
	if err != nil {
		// Fallback to simple format if JSON marshaling fails
		fmt.Fprintf(out, "{\"level\":%q,\"message\":%q}\n", level, message)
		return
	}
	fmt.Fprintln(out, string(jsonData))
}
