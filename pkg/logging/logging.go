package logging

import (
	"github.com/sirupsen/logrus"
)

var DefaultLogger = initDefaultLogger()

func initDefaultLogger() *logrus.Logger {
	opts := defaultLogOpts()
	logger := logrus.New()
	logger.SetLevel(opts.level)
	logger.SetOutput(opts.Writer())
	logger.SetReportCaller(true)
	logger.SetFormatter(opts.format.LogrusFormat())
	return logger
}

func SetLogLevel(logLevel logrus.Level) {
	DefaultLogger.SetLevel(logLevel)
}

func SetLogLevelToDebug() {
	DefaultLogger.SetLevel(logrus.DebugLevel)
}

func SetLogFormat(format LogFormat) {
	DefaultLogger.SetFormatter(format.LogrusFormat())
}

func SetupLogging(logOpts ...LogOption) {
	opts := defaultLogOpts()
	for _, opt := range logOpts {
		opt(opts)
	}

	SetLogFormat(opts.format)
	DefaultLogger.SetOutput(opts.Writer())
	SetLogLevel(opts.level)

	// Nothing should log through the standard logger, silence it
	logrus.SetLevel(logrus.PanicLevel)
}
