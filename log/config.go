package log

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the logging configuration shared by all the
// binaries in this repository
type Config struct {
	Level string
}

func (c *Config) Log(fields Fields) {
	fields.Add("logging.level", c.Level)
}

func (c *Config) Configure(v *viper.Viper) error {
	c.Level = v.GetString("logging.level")
	if len(c.Level) == 0 {
		c.Level = "info"
	}

	return nil
}

func (c *Config) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String("logging.level", "info",
		"sets the minimum logging level. One of debug, info, warn, error")

	return nil
}

// New creates a logger from the provided configuration. Unknown
// level strings fall back to debug so that misconfiguration does
// not hide information
func New(config *Config) Logger {
	props := LogrusProps{}

	switch config.Level {
	case "info":
		props.Level = logrus.InfoLevel
	case "warn":
		props.Level = logrus.WarnLevel
	case "error":
		props.Level = logrus.ErrorLevel
	default:
		props.Level = logrus.DebugLevel
	}

	return NewLogrus(props)
}
