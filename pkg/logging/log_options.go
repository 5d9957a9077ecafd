package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type LogFormat string

const (
	LogFormatJson LogFormat = "json"
	LogFormatText LogFormat = "text"
)

type LogOutput string

const (
	LogOutputStdout LogOutput = "stdout"
	LogOutputStderr LogOutput = "stderr"
)

type LogOptions struct {
	format LogFormat
	level  logrus.Level
	output LogOutput
	writer io.Writer
}

type LogOption func(*LogOptions)

func WithJsonFormat() LogOption {
	return func(lo *LogOptions) { lo.format = LogFormatJson }
}

func WithLogFormat(format LogFormat) LogOption {
	switch format {
	case LogFormatText, LogFormatJson:
	default: // fallback option, in case the input format is invalid
		format = LogFormatText
	}
	return func(lo *LogOptions) { lo.format = format }
}

func WithLogLevel(level string) LogOption {
	return func(lo *LogOptions) { lo.level = parseLogLevel(level) }
}

func WithLogOutput(output LogOutput) LogOption {
	return func(lo *LogOptions) { lo.output = output }
}

// WithWriter sends logs to w, overriding the configured LogOutput.
func WithWriter(w io.Writer) LogOption {
	return func(lo *LogOptions) { lo.writer = w }
}

// The command output goes to stdout, keep logs out of it by default.
func defaultLogOpts() *LogOptions {
	return &LogOptions{
		format: LogFormatText,
		level:  logrus.WarnLevel,
		output: LogOutputStderr,
	}
}

func (lf LogFormat) LogrusFormat() logrus.Formatter {
	switch lf {
	case LogFormatJson:
		return &logrus.JSONFormatter{
			CallerPrettyfier: prettier,
		}
	}
	return &logrus.TextFormatter{
		DisableColors:    true,
		CallerPrettyfier: prettier,
	}
}

func (lo LogOutput) Writer() io.Writer {
	if lo == LogOutputStdout {
		return os.Stdout
	}
	return os.Stderr
}

func (lo *LogOptions) Writer() io.Writer {
	if lo.writer != nil {
		return lo.writer
	}
	return lo.output.Writer()
}
