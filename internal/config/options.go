package config

import "github.com/oleg578/csvmd"

type ConfigOption struct {
	Key     string
	Value   any
	Comment string
}

// GetConfigOptions returns every setting with its default and meaning.
// This is the single source of truth for defaults and flag help.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		// Input
		{Key: "encoding", Value: csvmd.DefaultEncoding, Comment: "Character encoding of the input file"},
		{Key: "separator", Value: string(csvmd.DefaultSeparator), Comment: "Field separator (single ASCII character or tab, comma, semicolon, pipe)"},

		// Rendering
		{Key: "align", Value: false, Comment: "Pad cells so columns line up"},
		{Key: "strict", Value: false, Comment: "Fail on rows whose field count differs from the header"},
		{Key: "line_break", Value: csvmd.DefaultLineBreak, Comment: "Replacement for newlines inside cells"},

		// Delivery
		{Key: "stdout", Value: false, Comment: "Print the table instead of writing " + csvmd.OutputFile},
		{Key: "preview", Value: false, Comment: "Render the table in the terminal after converting"},

		// Logging
		{Key: "log.level", Value: "warn", Comment: "Log level: trace, debug, info, warn, error"},
		{Key: "log.format", Value: "console", Comment: "Log format: console, json, pretty"},
	}
}

// Comment returns the help text registered for key.
func Comment(key string) string {
	for _, o := range GetConfigOptions() {
		if o.Key == key {
			return o.Comment
		}
	}
	return ""
}
