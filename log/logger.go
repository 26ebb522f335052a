package log

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/benefits-network/benefits-bpp/bpp/constants"
	"github.com/benefits-network/benefits-bpp/conf"
)

type CtxLoggerKeyType string

const CtxLoggerKey CtxLoggerKeyType = "ctxLogger"

var (
	API     logrus.FieldLogger
	Request logrus.FieldLogger
	Content logrus.FieldLogger
)

func init() {
	SetupLoggers()
}

// SetupLoggers (re)builds the package loggers from conf. Tests call it again
// after pointing a log variable at a temporary file.
func SetupLoggers() {
	API = Logger(logrus.New(), conf.GetEnv("BPP_API_LOG"), "api", conf.GetEnv("ENVIRONMENT"))
	Request = Logger(logrus.New(), conf.GetEnv("BPP_REQUEST_LOG"), "api", conf.GetEnv("ENVIRONMENT"))
	Content = Logger(logrus.New(), conf.GetEnv("BPP_CONTENT_LOG"), "content", conf.GetEnv("ENVIRONMENT"))
}

func Logger(logger *logrus.Logger, outputFile string,
	application, environment string) logrus.FieldLogger {

	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetReportCaller(true)

	if outputFile != "" {
		if file, err := os.OpenFile(filepath.Clean(outputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
			logger.SetOutput(file)
		} else {
			logger.Infof("Failed to open output file %s. Will use stderr. %s",
				outputFile, err.Error())
		}
	}

	return logger.WithFields(logrus.Fields{
		"application": application,
		"environment": environment,
		"source_app":  "bpp",
		"version":     constants.Version,
	})
}

// StructuredLoggerEntry is the per-request log entry stored in the request context.
type StructuredLoggerEntry struct {
	Logger logrus.FieldLogger
}

// GetCtxLogger returns the request scoped logger, or the API logger when the
// context does not carry one.
func GetCtxLogger(ctx context.Context) logrus.FieldLogger {
	if entry, ok := ctx.Value(CtxLoggerKey).(*StructuredLoggerEntry); ok && entry.Logger != nil {
		return entry.Logger
	}
	return API
}

// NewCtxLogger stores a fresh entry for logger in ctx.
func NewCtxLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, CtxLoggerKey, &StructuredLoggerEntry{Logger: logger})
}

// SetLoggerFields adds fields to the request scoped logger so later log lines carry them.
func SetLoggerFields(ctx context.Context, fields logrus.Fields) (context.Context, logrus.FieldLogger) {
	entry, ok := ctx.Value(CtxLoggerKey).(*StructuredLoggerEntry)
	if !ok {
		logger := API.WithFields(fields)
		return NewCtxLogger(ctx, logger), logger
	}
	entry.Logger = entry.Logger.WithFields(fields)
	return ctx, entry.Logger
}

func WriteErrorWithFields(ctx context.Context, msg string, fields logrus.Fields) (context.Context, logrus.FieldLogger) {
	ctx, logger := SetLoggerFields(ctx, fields)
	logger.Error(msg)
	return ctx, logger
}

func WriteWarnWithFields(ctx context.Context, msg string, fields logrus.Fields) (context.Context, logrus.FieldLogger) {
	ctx, logger := SetLoggerFields(ctx, fields)
	logger.Warn(msg)
	return ctx, logger
}

func WriteInfoWithFields(ctx context.Context, msg string, fields logrus.Fields) (context.Context, logrus.FieldLogger) {
	ctx, logger := SetLoggerFields(ctx, fields)
	logger.Info(msg)
	return ctx, logger
}
