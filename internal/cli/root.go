package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oleg578/csvmd/internal/config"
)

const usageText = `Usage: csvmd <path_to_csv_file> [encoding] [separator]
  [encoding]: Optional. The encoding of the input file (e.g., 'cp1257'). Defaults to 'utf-8'.
  [separator]: Optional. The delimiter used in the input file (e.g., ';'). Defaults to ','.
`

// errReported marks failures whose message has already been printed.
var errReported = errors.New("csvmd: failure already reported")

// IsReported reports whether err was already shown to the user, so main only
// needs to set the exit code.
func IsReported(err error) bool {
	return errors.Is(err, errReported)
}

type env struct {
	fs      afero.Fs
	workDir string
}

// Option customizes where the command reads and writes files.
type Option func(*env)

// WithFs replaces the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(e *env) { e.fs = fs }
}

// WithWorkDir sets the directory output.md is written to. Default is the
// process working directory.
func WithWorkDir(dir string) Option {
	return func(e *env) { e.workDir = dir }
}

// Execute builds the root command and runs it against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the csvmd command.
func NewRootCmd(opts ...Option) *cobra.Command {
	e := &env{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(e)
	}

	v := viper.New()

	cmd := &cobra.Command{
		Use:           "csvmd <path_to_csv_file> [encoding] [separator]",
		Short:         "Convert a delimited text file to a Markdown table",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true, // usage is printed by run when arguments are wrong
		SilenceErrors: true, // let main print errors once
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) < 1 || len(args) > 3 {
				printUsage(out)
				return errReported
			}
			if len(args) > 1 {
				v.Set("encoding", args[1])
			}
			if len(args) > 2 {
				v.Set("separator", args[2])
			}
			if err := config.Load(v); err != nil {
				return err
			}
			return run(cmd, e, v, args[0])
		},
	}
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		printUsage(c.OutOrStdout())
		fmt.Fprint(c.OutOrStdout(), "\nFlags:\n"+c.LocalFlags().FlagUsages())
		return nil
	})

	flags := cmd.Flags()
	flags.Bool("stdout", false, config.Comment("stdout"))
	flags.Bool("preview", false, config.Comment("preview"))
	flags.Bool("align", false, config.Comment("align"))
	flags.Bool("strict", false, config.Comment("strict"))
	flags.String("line-break", "", config.Comment("line_break"))
	flags.String("log-level", "", config.Comment("log.level"))
	flags.String("log-format", "", config.Comment("log.format"))

	for key, flag := range map[string]string{
		"stdout":     "stdout",
		"preview":    "preview",
		"align":      "align",
		"strict":     "strict",
		"line_break": "line-break",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// Main runs the command and exits non-zero on failure. Errors that were not
// already printed go to stderr.
func Main() {
	if err := Execute(); err != nil {
		if !IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
