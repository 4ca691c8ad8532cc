package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/prodplan/prodplan/internal/config"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global logger. LOG_LEVEL takes precedence over the configured level.
// When a log file is configured, output goes to stderr and to a rotating file.
func Init(cfg config.Log) error {
	levelName := cfg.Level
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		levelName = envLevel
	}
	level := log.InfoLevel
	if levelName != "" {
		parsed, err := log.ParseLevel(levelName)
		if err != nil {
			return err
		}
		level = parsed
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return err
	}
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, fileWriter))
	log.Debugf("Logging to %s", cfg.File)
	return nil
}
