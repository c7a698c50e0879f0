package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oleg578/csvmd"
	"github.com/oleg578/csvmd/internal/config"
	"github.com/oleg578/csvmd/internal/logging"
)

// run converts path and delivers the table. Every failure is printed as a
// single user-facing line and returned as errReported.
func run(cmd *cobra.Command, e *env, v *viper.Viper, path string) error {
	out := cmd.OutOrStdout()
	encoding := v.GetString("encoding")

	fail := func(err error) error {
		fmt.Fprintln(out, csvmd.UserMessage(err, path, encoding))
		return errReported
	}

	fmt.Fprintf(out, "Processing file: %s with encoding: %s and separator: '%s'\n",
		path, encoding, v.GetString("separator"))

	if err := config.CheckConfigValidity(v); err != nil {
		return fail(&csvmd.ConvertError{Kind: csvmd.KindParse, Path: path, Err: err})
	}
	settings, err := config.FromViper(v)
	if err != nil {
		return fail(err)
	}

	provider, err := logging.NewProvider(settings.Log)
	if err != nil {
		return fail(err)
	}
	log := provider.GetLogger("csvmd.cli")

	opts := settings.Options

	if enc, err := csvmd.LookupEncoding(opts.Encoding); err == nil {
		log.Debug("resolved input encoding", "requested", opts.Encoding, "encoding", csvmd.EncodingName(enc))
	}

	table, err := csvmd.ReadTable(e.fs, path, opts)
	if err != nil {
		log.Debug("read failed", "path", path, "kind", csvmd.KindOf(err).String(), "error", err)
		return fail(err)
	}
	log.Debug("parsed input", "path", path, "columns", table.Columns(), "rows", len(table.Rows))

	if jagged := table.Jagged(); len(jagged) > 0 && opts.Policy == csvmd.PadTruncate {
		log.Warn("rows do not match the header width; padding or truncating",
			"rows", len(jagged), "first_row", jagged[0]+1, "columns", table.Columns())
	}
	if table.Empty() {
		log.Warn("input has no records; output is empty", "path", path)
	}

	md, err := csvmd.Render(table, opts)
	if err != nil {
		return fail(&csvmd.ConvertError{Kind: csvmd.KindParse, Path: path, Err: err})
	}

	if settings.Stdout {
		fmt.Fprint(out, md)
		log.Debug("wrote table to stdout", "bytes", len(md))
	} else {
		target := filepath.Join(e.workDir, csvmd.OutputFile)
		if err := csvmd.WriteOutput(e.fs, target, md); err != nil {
			return fail(err)
		}
		log.Debug("wrote table", "path", target, "bytes", len(md))
		fmt.Fprintf(out, "Successfully wrote Markdown output to '%s'\n", csvmd.OutputFile)
	}

	if settings.Preview {
		if err := preview(out, md); err != nil {
			log.Warn("preview failed", "error", err)
		}
	}
	return nil
}
