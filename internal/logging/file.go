package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ToFile sends all log output to a size-rotated file as well as stderr.
// Close the returned writer on shutdown.
func ToFile(path string) io.Closer {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return rotator
}
