package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// palette renders text in a status colour, or plainly when colour is off.
type palette struct {
	enabled bool
}

func newPalette(w io.Writer) palette {
	return palette{enabled: shouldColorize(w)}
}

func (p palette) paint(kind statusKind, text string) string {
	if !p.enabled {
		return text
	}
	c := color.New(statusKindColor(kind))
	c.EnableColor()
	return c.Sprint(text)
}

func (p palette) faint(text string) string {
	if !p.enabled {
		return text
	}
	c := color.New(color.FgHiBlack)
	c.EnableColor()
	return c.Sprint(text)
}

func renderStatusLine(label string, kind statusKind, message string, p palette) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusKindLabel(kind), message)
	}
	return p.paint(kind, fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText))
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) color.Attribute {
	switch kind {
	case statusOK:
		return color.FgGreen
	case statusWarn:
		return color.FgYellow
	case statusError:
		return color.FgRed
	default:
		return color.FgBlue
	}
}

func formatAge(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
