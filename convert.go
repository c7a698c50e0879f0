package csvmd

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// OutputFile is the fixed name of the file the command-line tool writes.
const OutputFile = "output.md"

// Convert reads the delimited file at path and returns its Markdown table.
// It never writes to fsys.
func Convert(fsys afero.Fs, path string, opts Options) (string, error) {
	t, err := ReadTable(fsys, path, opts)
	if err != nil {
		return "", err
	}
	md, err := Render(t, opts)
	if err != nil {
		return "", &ConvertError{Kind: KindParse, Path: path, Err: err}
	}
	return md, nil
}

// WriteOutput replaces path with content. The content goes to a temporary
// file next to path which is renamed over it, so a failed write leaves any
// existing file untouched.
func WriteOutput(fsys afero.Fs, path, content string) error {
	fail := func(err error) error {
		return &ConvertError{Kind: KindOutputWrite, Path: path, Err: err}
	}

	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fail(err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		return fail(err)
	}
	committed = true
	return nil
}
