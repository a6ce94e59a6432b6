package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/goliatone/go-shader-export/export"
)

// ConsoleLogger writes leveled, colored log lines.
type ConsoleLogger struct {
	out     io.Writer
	prefix  string
	verbose bool

	mu     sync.Mutex
	levels map[string]*color.Color
}

var _ export.Logger = (*ConsoleLogger)(nil)

// NewConsoleLogger creates a logger writing to out. Debug lines are only
// written when verbose is set.
func NewConsoleLogger(out io.Writer, prefix string, verbose, noColor bool) *ConsoleLogger {
	levels := map[string]*color.Color{
		"DEBUG": color.New(color.FgHiBlack),
		"INFO":  color.New(color.FgCyan),
		"WARN":  color.New(color.FgYellow),
		"ERROR": color.New(color.FgRed, color.Bold),
		"OK":    color.New(color.FgGreen),
	}
	for _, c := range levels {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return &ConsoleLogger{out: out, prefix: prefix, verbose: verbose, levels: levels}
}

func (l *ConsoleLogger) Debugf(format string, args ...any) {
	if l == nil || !l.verbose {
		return
	}
	l.log("DEBUG", format, args...)
}

func (l *ConsoleLogger) Infof(format string, args ...any) {
	l.log("INFO", format, args...)
}

func (l *ConsoleLogger) Warnf(format string, args ...any) {
	l.log("WARN", format, args...)
}

func (l *ConsoleLogger) Errorf(format string, args ...any) {
	l.log("ERROR", format, args...)
}

// Success prints a highlighted line without a level tag.
func (l *ConsoleLogger) Success(format string, args ...any) {
	if l == nil || l.out == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.levels["OK"].Fprintf(l.out, format+"\n", args...)
}

func (l *ConsoleLogger) log(level, format string, args ...any) {
	if l == nil || l.out == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	tag := l.levels[level].Sprintf("[%s]", level)
	fmt.Fprintf(l.out, "%s %s: %s\n", tag, l.prefix, fmt.Sprintf(format, args...))
}
