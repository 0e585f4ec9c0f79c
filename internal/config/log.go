package config

import "github.com/labstack/gommon/log"

// Level maps LOG_LEVEL to a gommon level. Unknown values mean INFO.
func (c Config) Level() log.Lvl {
	switch c.LogLevel {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}

// NewLogger returns a gommon logger with the given prefix at the configured
// level. Background components each own one.
func (c Config) NewLogger(prefix string) *log.Logger {
	l := log.New(prefix)
	l.SetLevel(c.Level())
	l.SetHeader(`{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}"}`)
	return l
}
