package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/hbs/hbs"
)

// report writes a human-readable diagnostic for a failed compile of the
// named source. Errors that locate a tag include the source line with a
// caret under it. Styling is dropped when w is not a terminal.
func report(w io.Writer, name string, err error) {
	r := lipgloss.NewRenderer(w)

	var (
		location = r.NewStyle().Bold(true)
		message  = r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
		snippet  = r.NewStyle().Foreground(lipgloss.Color("8"))
	)

	var se *hbs.SyntaxError
	if !errors.As(err, &se) {
		fmt.Fprintln(w, location.Render(name+":"), message.Render(err.Error()))

		return
	}

	pos := name + ":" + strconv.Itoa(se.Line) + ":" + strconv.Itoa(se.Column) + ":"

	fmt.Fprintln(w, location.Render(pos), message.Render(err.Error()))

	for line := range strings.Lines(se.Snippet()) {
		fmt.Fprintln(w, snippet.Render(strings.TrimSuffix(line, "\n")))
	}
}
