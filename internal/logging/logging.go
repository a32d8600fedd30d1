package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Setup configures the standard logrus logger. Unknown levels fall back to
// info; any format other than "text" logs JSON.
func Setup(level, format string, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	logrus.SetOutput(out)

	if format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: TimestampFormat,
			FullTimestamp:   true,
		})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: TimestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "time",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "msg",
			},
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// WithComponent tags entries with the subsystem emitting them.
func WithComponent(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
