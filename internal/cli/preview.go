package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultPreviewWidth = 80

// preview renders md for the terminal with glamour.
func preview(w io.Writer, md string) error {
	if md == "" {
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(previewWidth()),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, rendered)
	return err
}

func previewWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultPreviewWidth
	}
	return width
}
