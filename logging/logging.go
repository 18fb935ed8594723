// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the log section of the configuration file.
type Config struct {
	Level  string `yaml:"level"`  // logrus level name, e.g. "info", "debug"
	Format string `yaml:"format"` // auto | text | json
}

func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatAuto
	}
}

func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return err
	}
	switch c.Format {
	case FormatAuto, FormatText, FormatJSON:
		return nil
	}
	return fmt.Errorf("unknown log format %q", c.Format)
}

// Init applies cfg to the standard logger writing to stderr. "auto" picks
// text on a terminal and JSON otherwise.
func Init(cfg Config) error {
	return InitWriter(cfg, os.Stderr)
}

func InitWriter(cfg Config, w io.Writer) error {
	cfg.ApplyDefaults()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	format := cfg.Format
	if format == FormatAuto {
		format = FormatJSON
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = FormatText
		}
	}

	switch format {
	case FormatText:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.DateTime,
		})
	case FormatJSON:
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}
	logrus.SetOutput(w)
	logrus.SetLevel(level)
	return nil
}
