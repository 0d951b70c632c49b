package logging

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"sync"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. Each logger has a level
// (output below that level is discarded) and an underlying io.Writer that
// receives formatted, prefixed lines. It is safe for concurrent usage.
type Logger struct {
	// level is the minimum level at which this logger (and its subloggers,
	// unless overridden) emits output.
	level Level
	// prefix is any prefix specified for the logger.
	prefix string
	// mutex serializes writes to output so that concurrent publishers and
	// lookups interleave whole lines, never partial ones.
	mutex *sync.Mutex
	// stdlib adapts output to the standard log package so that timestamps and
	// call-site flags are honored in the same way the rest of the ecosystem
	// expects.
	stdlib *log.Logger
}

// NewLogger creates a new root logger at the given level, writing to output.
// A nil output is equivalent to passing ioutil.Discard.
func NewLogger(level Level, output io.Writer) *Logger {
	if output == nil {
		output = ioutil.Discard
	}
	return &Logger{
		level:  level,
		mutex:  &sync.Mutex{},
		stdlib: log.New(output, "", log.LstdFlags),
	}
}

// RootLogger is the default root logger, writing at warning level to
// ioutil.Discard. Callers that want process-wide diagnostics should construct
// their own root logger with NewLogger and pass it down explicitly; this
// value exists only so that packages with an optional *Logger parameter have
// a safe non-nil default.
var RootLogger = NewLogger(LevelWarn, ioutil.Discard)

// Sublogger creates a new sublogger with the specified name, inheriting the
// parent's level and output.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}

	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	return &Logger{
		level:  l.level,
		prefix: prefix,
		mutex:  l.mutex,
		stdlib: l.stdlib,
	}
}

// Level returns the logger's configured level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelDisabled
	}
	return l.level
}

// emit is the internal logging method.
func (l *Logger) emit(level Level, line string) {
	if l == nil || l.level < level {
		return
	}
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.stdlib.Output(4, line)
}

// Print logs information with semantics equivalent to fmt.Print.
func (l *Logger) Print(v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprint(v...))
}

// Printf logs information with semantics equivalent to fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintf(format, v...))
}

// Println logs information with semantics equivalent to fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintln(v...))
}

// Writer returns an io.Writer that writes lines using Println.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return ioutil.Discard
	}
	return &writer{callback: func(s string) { l.Println(s) }}
}

// Debug logs information with semantics equivalent to fmt.Print, but only if
// the logger's level permits debug output.
func (l *Logger) Debug(v ...interface{}) {
	l.emit(LevelDebug, fmt.Sprint(v...))
}

// Debugf logs information with semantics equivalent to fmt.Printf, but only
// if the logger's level permits debug output.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.emit(LevelDebug, fmt.Sprintf(format, v...))
}

// Debugln logs information with semantics equivalent to fmt.Println, but only
// if the logger's level permits debug output.
func (l *Logger) Debugln(v ...interface{}) {
	l.emit(LevelDebug, fmt.Sprintln(v...))
}

// DebugWriter returns an io.Writer that writes lines using Debugln.
func (l *Logger) DebugWriter() io.Writer {
	if l == nil {
		return ioutil.Discard
	}
	return &writer{callback: func(s string) { l.Debugln(s) }}
}

// Warn logs error information with a warning prefix and yellow color.
func (l *Logger) Warn(err error) {
	l.emit(LevelWarn, color.YellowString("Warning: %v", err))
}

// Warnf logs a formatted warning message with a warning prefix and yellow
// color.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.emit(LevelWarn, color.YellowString("Warning: "+format, v...))
}

// Error logs error information with an error prefix and red color.
func (l *Logger) Error(err error) {
	l.emit(LevelError, color.RedString("Error: %v", err))
}

// Errorf logs a formatted error message with an error prefix and red color.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.emit(LevelError, color.RedString("Error: "+format, v...))
}

// Info logs information with semantics equivalent to fmt.Print, but only if
// the logger's level permits informational output.
func (l *Logger) Info(v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprint(v...))
}

// Infof logs information with semantics equivalent to fmt.Printf, but only if
// the logger's level permits informational output.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintf(format, v...))
}
