// Package logging adapts go-logger to the small Logger interface used by the
// command-line tool.
package logging

import (
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the structured logger handed to the CLI. Args are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config captures the options exposed through --log-level and --log-format.
type Config struct {
	Level  string
	Format string
}

// Provider hands out module loggers backed by one go-logger root.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds a go-logger root from cfg. An empty format means console.
func NewProvider(cfg Config) (*Provider, error) {
	options := []glog.Option{}

	level, err := normalizeLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", cfg.Format)
	}

	return &Provider{root: glog.NewLogger(options...)}, nil
}

// GetLogger returns the logger for module name, or the root for "".
func (p *Provider) GetLogger(name string) Logger {
	if p == nil || p.root == nil {
		return NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return p.root
	}
	return p.root.GetLogger(name)
}

// ValidLevel reports whether level is accepted by NewProvider.
func ValidLevel(level string) bool {
	_, err := normalizeLevel(level)
	return err == nil
}

// ValidFormat reports whether format is accepted by NewProvider.
func ValidFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console", "json", "pretty":
		return true
	}
	return false
}

func normalizeLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return "", nil
	case "trace":
		return glog.Trace, nil
	case "debug":
		return glog.Debug, nil
	case "info":
		return glog.Info, nil
	case "warn", "warning":
		return glog.Warn, nil
	case "error":
		return glog.Error, nil
	default:
		return "", fmt.Errorf("logging: unsupported level %q", level)
	}
}

type noop struct{}

// NoOp returns a Logger that discards everything.
func NoOp() Logger { return noop{} }

func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any)  {}
func (noop) Warn(string, ...any)  {}
func (noop) Error(string, ...any) {}
