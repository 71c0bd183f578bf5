package config

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the structured logger: JSON into a rotating file under
// the config dir. Human-facing CLI output stays on stdout via fmt/color
// and never goes through here.
func NewLogger(cfg LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	file := cfg.File
	if file == "" {
		if dir, err := ConfigDir(); err == nil {
			file = filepath.Join(dir, "forgefit.log")
		}
	}
	if file == "" {
		return log
	}

	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	})
	return log
}
