// Package bar shows how far a test run has come
package bar

import (
	"fmt"
	"io"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// New returns a bar counting steps on stdout
func New(steps int, text string) *progressbar.ProgressBar {
	return NewWriter(ansi.NewAnsiStdout(), steps, text)
}

func NewWriter(w io.Writer, steps int, text string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		steps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(text),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Describe is the description shown after a step finished, colored by outcome
func Describe(part, step int, outcome string) string {
	color := "[green]"
	switch outcome {
	case "WARN":
		color = "[yellow]"
	case "FAIL", "ABORTED":
		color = "[red]"
	}
	return fmt.Sprintf("[cyan][%d.%d][reset] %s%s[reset]", part, step, color, outcome)
}
