package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds a zap logger writing human-readable output to the
// console. When logsDir is set, a JSON file named after env and the start
// time is teed alongside at debug level. The returned cleanup flushes the
// logger and closes the log file.
func InitLogger(env, logsDir string) (*zap.Logger, func() error, error) {
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	var logFile *os.File
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
	}

	if logsDir != "" {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logFileName := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", env, timestamp))
		f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f

		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.TimeKey = "timestamp"
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	cleanup := func() error {
		// stdout sync fails on terminals and pipes; only the file matters
		_ = logger.Sync()
		if logFile == nil {
			return nil
		}
		return logFile.Close()
	}
	return logger.With(zap.String("env", env)), cleanup, nil
}
