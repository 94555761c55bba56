// Package logging configures the framework logger shared by the harness and
// every device, sniffer and visualization handle it drives.
//
// The logger carries two sinks: a file sink that always captures full debug
// detail under the run's output directory, and a console sink whose level is
// selected by the run's verbosity setting. Configure may be called once per
// test class in the same process; each call detaches the sinks installed by
// the previous call so repeated classes do not produce duplicate log lines.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Configure installs the file and console sinks on log, truncating any
// existing file at path. It returns a close function that detaches both
// sinks and closes the file.
func Configure(log *logrus.Logger, path string, verbosity int) (func() error, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}

	// All filtering happens in the sinks, so the logger itself must pass
	// everything through.
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)

	formatter := &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
		DisableColors:   true,
	}

	// Detach sinks from any previous Configure call.
	log.ReplaceHooks(make(logrus.LevelHooks))

	log.AddHook(&writerHook{
		writer:    file,
		formatter: formatter,
		levels:    logrus.AllLevels,
	})
	log.AddHook(&writerHook{
		writer: os.Stdout,
		formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		},
		levels: consoleLevels(verbosity),
	})

	closeFn := func() error {
		log.ReplaceHooks(make(logrus.LevelHooks))
		return file.Close()
	}

	return closeFn, nil
}

// ChildLogger returns a logger for a named harness component. Device and
// sniffer handles log through the framework logger via these.
func ChildLogger(log logrus.FieldLogger, name string) logrus.FieldLogger {
	return log.WithField("component", name)
}

func consoleLevels(verbosity int) []logrus.Level {
	switch verbosity {
	case 0:
		return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel}
	case 2:
		return logrus.AllLevels
	default:
		return []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
			logrus.WarnLevel,
			logrus.InfoLevel,
		}
	}
}

// writerHook forwards formatted entries at the configured levels to a writer.
type writerHook struct {
	writer    io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}
