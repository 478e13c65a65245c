package utils

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = newLogger(zapcore.Lock(os.Stdout))
	sugar  = logger.Sugar()
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
}

func newLogger(ws zapcore.WriteSyncer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// InitLogger sends log output to stdout and, when filePath is set, to a
// size-rotated file as well.
func InitLogger(filePath, levelString string) error {
	ws := zapcore.Lock(os.Stdout)
	if filePath != "" {
		lj := &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		ws = zapcore.NewMultiWriteSyncer(ws, zapcore.AddSync(lj))
	}
	logger = newLogger(ws)
	sugar = logger.Sugar()
	SetLogLevel(levelString)
	return nil
}

// Logger returns the structured logger for call sites that attach fields.
func Logger() *zap.Logger {
	return logger.WithOptions(zap.AddCallerSkip(-1))
}

// SyncLogger flushes buffered output.
func SyncLogger() {
	_ = logger.Sync()
}

// SetLogLevel sets the global log level for the application.
func SetLogLevel(levelString string) {
	switch strings.ToUpper(levelString) {
	case "DEBUG":
		level.SetLevel(zapcore.DebugLevel)
	case "INFO", "":
		level.SetLevel(zapcore.InfoLevel)
	case "WARNING", "WARN":
		level.SetLevel(zapcore.WarnLevel)
	case "ERROR":
		level.SetLevel(zapcore.ErrorLevel)
	case "FATAL":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
		LogWarnf("Unknown log level '%s', defaulting to INFO", levelString)
	}
	LogDebugf("Log level set to %s", level.Level().CapitalString())
}

func LogDebug(args ...interface{}) { sugar.Debug(args...) }

func LogDebugf(format string, args ...interface{}) { sugar.Debugf(format, args...) }

func LogInfo(args ...interface{}) { sugar.Info(args...) }

func LogInfof(format string, args ...interface{}) { sugar.Infof(format, args...) }

func LogWarn(args ...interface{}) { sugar.Warn(args...) }

func LogWarnf(format string, args ...interface{}) { sugar.Warnf(format, args...) }

func LogError(args ...interface{}) { sugar.Error(args...) }

func LogErrorf(format string, args ...interface{}) { sugar.Errorf(format, args...) }

func LogFatal(args ...interface{}) { sugar.Fatal(args...) }

func LogFatalf(format string, args ...interface{}) { sugar.Fatalf(format, args...) }
