// Package ux provides user experience utilities for the sonar-android-lint command line.
// It includes colored output formatting, progress tracking, spinners, and consistent
// message styling for success, error, warning, and informational messages.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Color definitions for consistent output
var (
	Success = color.New(color.FgGreen).SprintFunc()
	Error   = color.New(color.FgRed).SprintFunc()
	Warning = color.New(color.FgYellow).SprintFunc()
	Info    = color.New(color.FgCyan).SprintFunc()
	Bold    = color.New(color.Bold).SprintFunc()
	Dim     = color.New(color.Faint).SprintFunc()
)

// Out is where the Print helpers write
var Out io.Writer = os.Stdout

// PrintSuccess prints a success message with green checkmark
func PrintSuccess(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(Out, "%s %s\n", Success("✓"), msg)
}

// PrintError prints an error message with red X
func PrintError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(Out, "%s %s\n", Error("✗"), msg)
}

// PrintWarning prints a warning message with yellow triangle
func PrintWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(Out, "%s %s\n", Warning("⚠"), msg)
}

// PrintInfo prints an info message with cyan dot
func PrintInfo(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(Out, "%s %s\n", Info("•"), msg)
}

// PrintHeader prints a bold header
func PrintHeader(text string) {
	fmt.Fprintln(Out, Bold(text))
	fmt.Fprintln(Out, Bold(strings.Repeat("=", len(text))))
	fmt.Fprintln(Out)
}

// PrintSection prints a section header
func PrintSection(text string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, Bold(text))
}

// NewProgressBar creates a new progress bar with consistent styling
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

// Spinner animates a message on stderr while a slow call is in flight
type Spinner struct {
	message string
	frames  []string
	writer  io.Writer
	stop    chan struct{}
	stopped chan struct{}
	started bool
	once    sync.Once
}

// NewSpinner creates a spinner for message. It does nothing until Start.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		writer:  os.Stderr,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation
func (s *Spinner) Start() {
	s.started = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(s.writer, "\r%s %s", Info(s.frames[i%len(s.frames)]), s.message)
			select {
			case <-s.stop:
				fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", visibleLen(s.message)+2))
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and clears the line. It waits for the animation to finish
// and is safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		if s.started {
			<-s.stopped
		}
	})
}

// FormatCost formats a cost value with color
func FormatCost(cost float64) string {
	if cost < 0.01 {
		return Success(fmt.Sprintf("$%.4f", cost))
	} else if cost < 0.10 {
		return Info(fmt.Sprintf("$%.4f", cost))
	} else if cost < 1.00 {
		return Warning(fmt.Sprintf("$%.4f", cost))
	}
	return Error(fmt.Sprintf("$%.4f", cost))
}

// FormatSeverity colors a SonarQube severity
func FormatSeverity(severity string) string {
	switch severity {
	case "BLOCKER", "CRITICAL":
		return Error(severity)
	case "MAJOR":
		return Warning(severity)
	case "MINOR":
		return Info(severity)
	default:
		return Dim(severity)
	}
}

// FormatCount formats a count with thousands separators
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatSize formats a byte size, e.g. "1.2 MB"
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}

// FormatDuration formats a duration nicely
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return Dim(d.Round(time.Millisecond).String())
	}
	return Dim(d.Round(time.Second).String())
}

// ProgressWriter receives progress and diagnostics from long-running operations
type ProgressWriter interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	StartPhase(phaseName string, total int)
	Advance()
	EndPhase()
	// Wait signals a slow step; the returned func marks it finished
	Wait(message string) (done func())
}

// NoOpProgressWriter is a no-op implementation of ProgressWriter
type NoOpProgressWriter struct{}

func (n *NoOpProgressWriter) Info(format string, args ...interface{})  {}
func (n *NoOpProgressWriter) Warn(format string, args ...interface{})  {}
func (n *NoOpProgressWriter) Error(format string, args ...interface{}) {}
func (n *NoOpProgressWriter) StartPhase(phaseName string, total int)   {}
func (n *NoOpProgressWriter) Advance()                                 {}
func (n *NoOpProgressWriter) EndPhase()                                {}

func (n *NoOpProgressWriter) Wait(message string) func() { return func() {} }

// ConsoleProgressWriter writes progress to the console, with a progress bar per phase
// when attached to a terminal
type ConsoleProgressWriter struct {
	bar *progressbar.ProgressBar
}

func (c *ConsoleProgressWriter) Info(format string, args ...interface{}) {
	PrintInfo(format, args...)
}

func (c *ConsoleProgressWriter) Warn(format string, args ...interface{}) {
	PrintWarning(format, args...)
}

func (c *ConsoleProgressWriter) Error(format string, args ...interface{}) {
	PrintError(format, args...)
}

func (c *ConsoleProgressWriter) StartPhase(phaseName string, total int) {
	if total > 0 && IsTerminal() {
		c.bar = NewProgressBar(total, phaseName)
		return
	}
	PrintSection(phaseName)
}

func (c *ConsoleProgressWriter) Advance() {
	if c.bar != nil {
		_ = c.bar.Add(1)
	}
}

func (c *ConsoleProgressWriter) EndPhase() {
	if c.bar != nil {
		_ = c.bar.Finish()
		c.bar = nil
	}
}

// Wait shows a spinner until done is called. While a phase bar is drawn the bar's
// description carries the message instead, and off a terminal nothing is shown.
func (c *ConsoleProgressWriter) Wait(message string) func() {
	if c.bar != nil {
		c.bar.Describe(message)
		return func() {}
	}
	if !IsTerminal() {
		return func() {}
	}
	s := NewSpinner(message)
	s.Start()
	return s.Stop
}

// PrintSummaryTable prints rows as left-aligned columns
func PrintSummaryTable(rows [][]string) {
	if len(rows) == 0 {
		return
	}

	colWidths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, col := range row {
			if i >= len(colWidths) {
				continue
			}
			if w := visibleLen(col); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	for _, row := range rows {
		for i, col := range row {
			width := 0
			if i < len(colWidths) {
				width = colWidths[i]
			}
			fmt.Fprint(Out, col+strings.Repeat(" ", width-visibleLen(col)+2))
		}
		fmt.Fprintln(Out)
	}
}

// visibleLen returns the rune length of s without ANSI color sequences
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			n++
		}
	}
	return n
}

// IsTerminal checks if output is going to a terminal
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
