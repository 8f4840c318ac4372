// Package logger builds the colored console logger shared by the api and the
// worker.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger with color, writing to stdout.
func New() (*zap.SugaredLogger, error) {
	return newWithSyncer(zapcore.AddSync(os.Stdout)), nil
}

func newWithSyncer(ws zapcore.WriteSyncer) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.NewMultiWriteSyncer(ws), zapcore.InfoLevel)
	return zap.New(core).Sugar()
}
