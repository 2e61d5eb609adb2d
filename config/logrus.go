package config

import (
	"context"
	"os"

	"bitbucket.org/mmdatafocus/apvalidation_backend/appctx"
	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.ErrorLevel)
	logg.SetOutput(os.Stdout)

	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logg.SetLevel(lvl)
	}
}

// LogError emits one structured error line. The correlation id and run id are
// taken from ctx when present so lines from detached goroutines still tie back
// to the originating request.
func LogError(ctx context.Context, logger *logrus.Logger, moduleName string, funcName string, operation string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  operation,
	}
	if data != nil {
		fields["data"] = data
	}
	if cid, ok := appctx.GetString(ctx, appctx.ContextKeyCorrelationId); ok {
		fields["correlationId"] = cid
	}
	if runId, ok := appctx.GetString(ctx, appctx.ContextKeyRunId); ok {
		fields["runId"] = runId
	}
	logger.WithFields(fields).Error(err.Error())
}
