package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/oleg578/csvmd"
	"github.com/oleg578/csvmd/internal/logging"
)

// Settings is the resolved configuration of one csvmd run.
type Settings struct {
	Options csvmd.Options
	Stdout  bool
	Preview bool
	Log     logging.Config
}

// applyDefaults seeds Viper with the defaults from GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Value)
	}
}

// Load applies defaults to v. Values come only from defaults, bound flags, and
// explicit v.Set calls; no config file or environment is consulted.
func Load(v *viper.Viper) error {
	if v == nil {
		return errors.New("config: nil viper instance")
	}
	applyDefaults(v)

	// An empty positional encoding or separator means the default.
	if strings.TrimSpace(v.GetString("encoding")) == "" {
		v.Set("encoding", csvmd.DefaultEncoding)
	}
	if v.GetString("separator") == "" {
		v.Set("separator", string(csvmd.DefaultSeparator))
	}
	return nil
}

// CheckConfigValidity reports every invalid value in v at once.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error

	if _, err := ParseSeparator(v.GetString("separator")); err != nil {
		errs = append(errs, err)
	}
	if _, err := csvmd.LookupEncoding(v.GetString("encoding")); err != nil {
		errs = append(errs, err)
	}
	if !logging.ValidLevel(v.GetString("log.level")) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of trace, debug, info, warn, error", v.GetString("log.level")))
	}
	if !logging.ValidFormat(v.GetString("log.format")) {
		errs = append(errs, fmt.Errorf("log.format %q is not one of console, json, pretty", v.GetString("log.format")))
	}
	if strings.ContainsAny(v.GetString("line_break"), "|\r\n") {
		errs = append(errs, errors.New("line_break must not contain '|' or newlines"))
	}
	return errors.Join(errs...)
}

// FromViper resolves Settings from v. Call Load first.
func FromViper(v *viper.Viper) (Settings, error) {
	sep, err := ParseSeparator(v.GetString("separator"))
	if err != nil {
		return Settings{}, err
	}

	opts := csvmd.Options{
		Encoding:  strings.TrimSpace(v.GetString("encoding")),
		Separator: sep,
		Align:     v.GetBool("align"),
		LineBreak: v.GetString("line_break"),
		Policy:    csvmd.PadTruncate,
	}
	if v.GetBool("strict") {
		opts.Policy = csvmd.Strict
	}

	return Settings{
		Options: opts,
		Stdout:  v.GetBool("stdout"),
		Preview: v.GetBool("preview"),
		Log: logging.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}, nil
}

var separatorAliases = map[string]byte{
	`\t`:        '\t',
	"tab":       '\t',
	"comma":     ',',
	"semicolon": ';',
	"pipe":      '|',
	"space":     ' ',
}

// ParseSeparator turns a user-supplied separator into the byte the reader
// expects. Named aliases are case-insensitive.
func ParseSeparator(s string) (byte, error) {
	if s == "" {
		return csvmd.DefaultSeparator, nil
	}
	if b, ok := separatorAliases[strings.ToLower(s)]; ok {
		return b, nil
	}
	if len(s) != 1 || s[0] >= 0x80 || s[0] == '"' || s[0] == '\r' || s[0] == '\n' {
		return 0, fmt.Errorf("%w: %q (want a single ASCII character)", csvmd.ErrInvalidSeparator, s)
	}
	return s[0], nil
}
