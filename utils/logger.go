package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLogger sets up the info logger on stdout and the error logger on stderr.
func InitLogger() {
	InitLoggerWithLevel("info")
}

// InitLoggerWithLevel is InitLogger with an explicit level for the info logger.
// Unknown levels fall back to info.
func InitLoggerWithLevel(level string) {
	InfoLogger = newLogger(os.Stdout)
	ErrorLogger = newLogger(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	InfoLogger.SetLevel(lvl)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l
}

// OrderFields is the common field set for order lifecycle log lines.
func OrderFields(restaurantID, orderID interface{}) logrus.Fields {
	return logrus.Fields{
		"restaurant_id": restaurantID,
		"order_id":      orderID,
	}
}
