package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Field = zap.Field

type Logger interface {
    Info(msg string, fields ...zap.Field)
    Error(msg string, fields ...zap.Field)
    Debug(msg string, fields ...zap.Field)
    Warn(msg string, fields ...zap.Field)
}

func StringField(key, value string) Field {
    return zap.String(key, value)
}

func IntField(key string, value int) Field {
    return zap.Int(key, value)
}

func Int64Field(key string, value int64) Field {
    return zap.Int64(key, value)
}

func DurationField(key string, value time.Duration) Field {
    return zap.Duration(key, value)
}

func ErrorField(key string, err error) Field {
    return zap.NamedError(key, err)
}

func AnyField(key string, value interface{}) Field {
    return zap.Any(key, value)
}

func NewLogger() (*zap.Logger, func()) {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        panic("failed to create logs directory: " + err.Error())
    }

    infoFile, err := os.OpenFile("logs/info.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
    if err != nil {
        panic("failed to open info log file: " + err.Error())
    }

    errorFile, err := os.OpenFile("logs/error.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
    if err != nil {
        panic("failed to open error log file: " + err.Error())
    }

    encoderConfig := zapcore.EncoderConfig{
        TimeKey:        "timestamp",
        LevelKey:       "level",
        NameKey:        "logger",
        CallerKey:      "caller",
        MessageKey:     "message",
        StacktraceKey:  "stacktrace",
        LineEnding:     zapcore.DefaultLineEnding,
        EncodeLevel:    zapcore.LowercaseLevelEncoder,
        EncodeTime:     zapcore.ISO8601TimeEncoder,
        EncodeDuration: zapcore.SecondsDurationEncoder,
        EncodeCaller:   zapcore.ShortCallerEncoder,
    }

    infoCore := zapcore.NewCore(
        zapcore.NewJSONEncoder(encoderConfig),
        zapcore.AddSync(infoFile),
        zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
            return lvl <= zapcore.InfoLevel
        }),
    )

    errorCore := zapcore.NewCore(
        zapcore.NewJSONEncoder(encoderConfig),
        zapcore.AddSync(errorFile),
        zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
            return lvl >= zapcore.WarnLevel
        }),
    )

    core := zapcore.NewTee(infoCore, errorCore)

    logger := zap.New(core, zap.AddCaller())

    cleanup := func() {
        logger.Sync()
        infoFile.Close()
        errorFile.Close()
    }

    return logger, cleanup
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() Logger {
    return zap.NewNop()
}
