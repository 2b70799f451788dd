package logger

import (
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.Mutex
	log *zap.Logger
)

// Options controls logger construction
type Options struct {
	// Debug enables debug level and the development encoder
	Debug bool
	// File additionally writes JSON logs to a rotated file
	File string
}

// Init initializes the global logger with console output only
func Init(debug bool) {
	Configure(Options{Debug: debug})
}

// InitWithFile initializes the global logger with both console and file output
func InitWithFile(debug bool, logFile string) {
	Configure(Options{Debug: debug, File: logFile})
}

// Configure replaces the global logger. Console output goes to stderr so
// commands can print their results on stdout.
func Configure(opts Options) {
	Set(New(opts))
}

// New builds a logger without installing it
func New(opts Options) *zap.Logger {
	level := zapcore.InfoLevel
	encoderConfig := zap.NewProductionEncoderConfig()
	if opts.Debug {
		level = zapcore.DebugLevel
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stderr), level),
	}

	if opts.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     7, // days
			}),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Set installs l as the global logger, e.g. an observer in tests
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// Get returns the global logger
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = New(Options{})
	}
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		_ = log.Sync()
	}
}
