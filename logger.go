package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initLogger configures and creates a new zap logger
func initLogger(cfg ServerConfig) (*zap.Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder, // Adds color to log levels
		EncodeTime:     CustomTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	outputs := []string{"stdout"}
	if cfg.LogDir != "" {
		// Create logs directory if it doesn't exist
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", cfg.LogDir, err)
		}
		outputs = append(outputs, filepath.Join(cfg.LogDir, "server.log"))
	}

	config := zap.Config{
		Development:      false,
		Level:            level,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		Encoding:         "console", // Use console encoding for better readability
		EncoderConfig:    encoderConfig,
	}

	return config.Build(zap.AddCaller())
}

// CustomTimeEncoder formats the time with colors and better formatting
func CustomTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("\x1b[36m" + t.Format("2006-01-02 15:04:05.000") + "\x1b[0m")
}

// CustomRequestLogger creates a custom request logger middleware
func CustomRequestLogger(sugar *zap.SugaredLogger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			status := v.Status
			var statusColor string
			switch {
			case status >= 500:
				statusColor = "\x1b[31m" // Red
			case status >= 400:
				statusColor = "\x1b[33m" // Yellow
			case status >= 300:
				statusColor = "\x1b[36m" // Cyan
			default:
				statusColor = "\x1b[32m" // Green
			}

			sugar.Infof("HTTP Request: method=%s, uri=%s%s%s, status=%s%s%s, latency=%s%s%s, ip=%s",
				c.Request().Method,
				"\x1b[35m", v.URI, "\x1b[0m",
				statusColor, strconv.Itoa(v.Status), "\x1b[0m",
				"\x1b[37m", v.Latency.String(), "\x1b[0m",
				c.RealIP(),
			)
			return nil
		},
	})
}
