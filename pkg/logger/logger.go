// Package logger wrapper for zerolog
package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Config logger settings
type Config struct {
	Level             string
	TimeFieldFormat   string
	PrettyPrint       bool
	RedirectStdLogger bool
	DisableSampling   bool
	ErrorStack        bool
	ShowCaller        bool
	FileName          string
}

// Logger leveled structured logger with separate stdout and stderr sinks
type Logger struct {
	zero        zerolog.Logger
	zeroErr     zerolog.Logger
	prettyPrint bool
	showCaller  bool
	fileWriter  io.Writer
}

var defaultConfig = Config{
	Level:           "debug",
	TimeFieldFormat: time.RFC3339,
	PrettyPrint:     true,
	DisableSampling: true,
}

// NewDefault creates Logger with default settings
func NewDefault() *Logger {
	return New(defaultConfig)
}

// New creates a new Logger
func New(cfg Config) *Logger {
	zerolog.SetGlobalLevel(getZerologLevel(cfg.Level))
	zerolog.DisableSampling(cfg.DisableSampling)
	zerolog.TimeFieldFormat = cfg.TimeFieldFormat
	if cfg.ErrorStack {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	}

	l := &Logger{
		prettyPrint: cfg.PrettyPrint,
		showCaller:  cfg.ShowCaller,
	}

	if cfg.FileName != "" {
		f, err := os.Create(prepareLogFileName(cfg.FileName))
		if err != nil {
			log.Fatalf("failed to create log file: %v", err)
		}
		l.fileWriter = f
	}

	out, errOut := l.writers()
	l.zero = zerolog.New(out).With().Timestamp().Logger()
	l.zeroErr = zerolog.New(errOut).With().Timestamp().Logger()
	if l.showCaller {
		l.zero = l.zero.With().Caller().Logger()
		l.zeroErr = l.zeroErr.With().Caller().Logger()
	}

	if cfg.RedirectStdLogger {
		log.SetFlags(0)
		log.SetOutput(l.zero)
	}

	return l
}

// Debug starts a new message with debug level
func (l *Logger) Debug() *zerolog.Event {
	return l.zero.Debug()
}

// Info starts a new message with info level
func (l *Logger) Info() *zerolog.Event {
	return l.zero.Info()
}

// Warn starts a new message with warn level
func (l *Logger) Warn() *zerolog.Event {
	return l.zeroErr.Warn()
}

// Error starts a new message with error level
func (l *Logger) Error() *zerolog.Event {
	return l.zeroErr.Error()
}

// With creates a child logger context
func (l *Logger) With() zerolog.Context {
	return l.zero.With()
}

// Fatal sends the event with fatal level
func (l *Logger) Fatal(v ...interface{}) {
	l.zeroErr.Fatal().Msgf("%v", v)
}

// Fatalf sends the event with formatted msg with fatal level
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.zeroErr.Fatal().Msgf(format, v...)
}

// Printf sends the event with formatted msg with debug level
func (l *Logger) Printf(format string, v ...interface{}) {
	l.zero.Debug().Msgf(format, v...)
}

// Duplicate creates a logger sharing sinks with l but carrying the context of zero
func (l *Logger) Duplicate(zero zerolog.Logger) *Logger {
	dup := &Logger{
		prettyPrint: l.prettyPrint,
		showCaller:  l.showCaller,
		fileWriter:  l.fileWriter,
	}

	out, errOut := dup.writers()
	dup.zero = zero.Output(out)
	dup.zeroErr = zero.Output(errOut)

	return dup
}

// Layer shortcut for Duplicate with a "layer" field
func (l *Logger) Layer(name string) *Logger {
	return l.Duplicate(l.With().Str("layer", name).Logger())
}

// writers returns the stdout and stderr sinks, the log file always receives raw JSON
func (l *Logger) writers() (io.Writer, io.Writer) {
	var out, errOut io.Writer = os.Stdout, os.Stderr
	if l.prettyPrint {
		out, errOut = zerolog.ConsoleWriter{Out: os.Stdout}, zerolog.ConsoleWriter{Out: os.Stderr}
	}
	if l.fileWriter == nil {
		return out, errOut
	}
	return zerolog.MultiLevelWriter(out, l.fileWriter), zerolog.MultiLevelWriter(errOut, l.fileWriter)
}

func getZerologLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled":
		return zerolog.Disabled
	}
	return zerolog.NoLevel
}

func prepareLogFileName(pattern string) string {
	cur := time.Now()
	return strings.NewReplacer(
		"%d", cur.Format("2"),
		"%D", cur.Format("02"),
		"%m", cur.Format("1"),
		"%M", cur.Format("01"),
		"%y", cur.Format("06"),
		"%Y", cur.Format("2006"),
		"%H", cur.Format("15"),
		"%N", cur.Format("04"),
		"%S", cur.Format("05"),
	).Replace(pattern)
}
