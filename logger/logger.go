package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns the process logger. An empty path logs to stdout,
// anything else appends to that file.
func New(path string, debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	if len(path) == 0 {
		l.SetOutput(os.Stdout)
		return l
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		l.Fatal(err)
	}
	l.SetOutput(f)
	l.Info("Initializing sc64.log")
	return l
}
