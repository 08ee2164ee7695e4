package audit

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the dedicated audit channel: an info-level logger whose
// every line reads `<UTC timestamp> - AUDIT - <event JSON>`. The channel has
// no buffering, retries or persistence; durability belongs to whatever
// ingests the stream.
func NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&lineFormatter{})
	return logger
}

type lineFormatter struct{}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	ts := entry.Time.UTC().Format("2006-01-02 15:04:05")
	return []byte(fmt.Sprintf("%s - AUDIT - %s\n", ts, entry.Message)), nil
}
