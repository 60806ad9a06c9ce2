package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// ANSI color codes for console output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

type logger struct {
	console  [4]*log.Logger // colored, indexed by level
	plain    [4]*log.Logger // uncolored file loggers, nil without a file
	file     *os.File
	minLevel LogLevel
}

var (
	std  *logger
	once sync.Once
	mu   sync.Mutex
)

func ensureInitialized() {
	once.Do(func() {
		if std == nil {
			std = newLogger(nil)
		}
	})
}

func newLogger(file *os.File) *logger {
	l := &logger{file: file, minLevel: DEBUG}
	flags := log.Ldate | log.Ltime | log.Lshortfile

	prefixes := [4]string{
		colorGray + "[DEBUG] " + colorReset,
		colorReset + "[INFO]  " + colorReset,
		colorYellow + "[WARN]  " + colorReset,
		colorRed + "[ERROR] " + colorReset,
	}
	plainPrefixes := [4]string{"[DEBUG] ", "[INFO]  ", "[WARN]  ", "[ERROR] "}

	for i := range prefixes {
		l.console[i] = log.New(os.Stdout, prefixes[i], flags)
		if file != nil {
			l.plain[i] = log.New(file, plainPrefixes[i], flags)
		}
	}
	return l
}

// Init reconfigures the logger to additionally write uncolored output
// to the given file. An empty filename keeps console-only logging.
func Init(filename string) error {
	mu.Lock()
	defer mu.Unlock()

	var file *os.File
	if filename != "" {
		var err error
		file, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
	}
	if std != nil && std.file != nil {
		std.file.Close()
	}
	std = newLogger(file)
	return nil
}

// SetLevel sets the minimum level; messages below it are dropped.
func SetLevel(level LogLevel) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	std.minLevel = level
}

// Close closes the log file if one is open.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if std != nil && std.file != nil {
		std.file.Close()
		std.file = nil
		std.plain = [4]*log.Logger{}
	}
}

func (l *logger) output(level LogLevel, msg string) {
	if level < l.minLevel {
		return
	}
	l.console[level].Output(3, msg)
	if l.plain[level] != nil {
		l.plain[level].Output(3, msg)
	}
}

// Debug logs a debug message.
func Debug(v ...interface{}) {
	ensureInitialized()
	std.output(DEBUG, fmt.Sprint(v...))
}

// Debugf logs a formatted debug message.
func Debugf(format string, v ...interface{}) {
	ensureInitialized()
	std.output(DEBUG, fmt.Sprintf(format, v...))
}

// Info logs an info message.
func Info(v ...interface{}) {
	ensureInitialized()
	std.output(INFO, fmt.Sprint(v...))
}

// Infof logs a formatted info message.
func Infof(format string, v ...interface{}) {
	ensureInitialized()
	std.output(INFO, fmt.Sprintf(format, v...))
}

// Warn logs a warning message.
func Warn(v ...interface{}) {
	ensureInitialized()
	std.output(WARN, fmt.Sprint(v...))
}

// Warnf logs a formatted warning message.
func Warnf(format string, v ...interface{}) {
	ensureInitialized()
	std.output(WARN, fmt.Sprintf(format, v...))
}

// Error logs an error message.
func Error(v ...interface{}) {
	ensureInitialized()
	std.output(ERROR, fmt.Sprint(v...))
}

// Errorf logs a formatted error message.
func Errorf(format string, v ...interface{}) {
	ensureInitialized()
	std.output(ERROR, fmt.Sprintf(format, v...))
}

// Fatal logs an error message and exits the program.
func Fatal(v ...interface{}) {
	ensureInitialized()
	std.output(ERROR, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs a formatted error message and exits the program.
func Fatalf(format string, v ...interface{}) {
	ensureInitialized()
	std.output(ERROR, fmt.Sprintf(format, v...))
	os.Exit(1)
}
