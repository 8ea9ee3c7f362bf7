package logger

import (
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
)

// Setup initializes Logrus with a rotating file for the tracker service.
// LOG_FILE and LOG_LEVEL override the defaults.
func Setup() {
	filename := os.Getenv("LOG_FILE")
	if filename == "" {
		filename = "./logs/tracker.log"
	}

	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // megabytes
		MaxBackups: 7,
		MaxAge:     7, // days
		Compress:   true,
	}

	logrus.SetOutput(rotator)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// GormLogger returns the standard Logrus logger for GORM.
func GormLogger() *logrus.Logger {
	return logrus.StandardLogger()
}
