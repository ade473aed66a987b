// Package alerts prints run findings to the terminal: failures, data
// quality warnings and the closing status line.
package alerts

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/agentstation/stockmap/pkg/errors"
)

// Level represents the severity of an alert.
type Level int

const (
	// LevelError indicates a failure or error condition.
	LevelError Level = iota
	// LevelWarning indicates a data quality finding or skipped input.
	LevelWarning
	// LevelInfo indicates general informational messages.
	LevelInfo
	// LevelSuccess indicates successful completion of an operation.
	LevelSuccess
)

// String returns the string representation of the alert level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Icon returns the appropriate icon for the alert level.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return "❌"
	case LevelWarning:
		return "⚠️"
	case LevelInfo:
		return "ℹ️"
	case LevelSuccess:
		return "✅"
	default:
		return "❓"
	}
}

// Color returns ANSI color codes for terminal output.
func (l Level) Color() string {
	switch l {
	case LevelError:
		return "\033[31m"
	case LevelWarning:
		return "\033[33m"
	case LevelInfo:
		return "\033[36m"
	case LevelSuccess:
		return "\033[32m"
	default:
		return resetColor
	}
}

const resetColor = "\033[0m"

// Alert represents a single notification.
type Alert struct {
	Level   Level
	Message string
	Err     error
}

// FromError classifies err: skipped feeds and data quality findings are
// warnings, anything else is an error.
func FromError(err error) Alert {
	if errors.IsSourceUnavailable(err) || errors.IsDataQuality(err) {
		return Alert{Level: LevelWarning, Message: err.Error(), Err: err}
	}
	return Alert{Level: LevelError, Message: err.Error(), Err: err}
}

// String returns the icon and message.
func (a Alert) String() string {
	return a.Level.Icon() + " " + a.Message
}

// Printer writes alerts to a stream, colored when it is a terminal.
type Printer struct {
	w     io.Writer
	color bool
	quiet bool
}

// NewPrinter creates a Printer. With noColor set, or when w is not a
// terminal, output is plain. Quiet printers drop everything below
// LevelWarning.
func NewPrinter(w io.Writer, noColor, quiet bool) *Printer {
	return &Printer{w: w, color: !noColor && isTerminal(w), quiet: quiet}
}

// Print writes one alert.
func (p *Printer) Print(a Alert) {
	if p.quiet && a.Level > LevelWarning {
		return
	}
	if p.color {
		_, _ = fmt.Fprintf(p.w, "%s%s%s\n", a.Level.Color(), a, resetColor)
		return
	}
	_, _ = fmt.Fprintln(p.w, a.String())
}

// Errors prints each error classified by FromError, up to limit entries;
// a limit under 1 prints them all. It returns how many were omitted.
func (p *Printer) Errors(errs []error, limit int) int {
	for i, err := range errs {
		if limit > 0 && i == limit {
			omitted := len(errs) - limit
			p.Print(Alert{Level: LevelInfo, Message: fmt.Sprintf("%d more not shown", omitted)})
			return omitted
		}
		p.Print(FromError(err))
	}
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
