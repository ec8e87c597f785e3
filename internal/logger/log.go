package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

// DebugEnv turns debug logging on when set to anything but "false" or "disable".
const DebugEnv = "GORMSKIPPER_DEBUG"

var logger = zap.NewNop().Sugar()

// Init replaces the global logger. debug selects the development config.
func Init(debug bool) error {
	if !debug {
		if env := strings.ToLower(os.Getenv(DebugEnv)); env != "" && env != "disable" && env != "false" {
			debug = true
		}
	}

	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)
	logger = l.Sugar()
	return nil
}

func Sync() {
	_ = logger.Sync()
}

func Debugw(msg string, keysAndValues ...any) {
	logger.Debugw(msg, keysAndValues...)
}

func Debugf(template string, args ...any) {
	logger.Debugf(template, args...)
}

func Infof(template string, args ...any) {
	logger.Infof(template, args...)
}

func Errorf(template string, args ...any) {
	logger.Errorf(template, args...)
}
