package ledger

import (
	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
)

// ColorLine renders the entry like Entry.String with the outcome colored
func ColorLine(e Entry) string {
	var prefix string
	switch e.Outcome {
	case Fail:
		prefix = red(e.Outcome.String())
	case Warn:
		prefix = yellow(e.Outcome.String())
	default:
		prefix = green(e.Outcome.String())
	}
	return prefix + ": " + e.Message
}

func milestone(text string) string {
	return cyan(text)
}
