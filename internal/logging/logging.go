// Package logging builds the process logger: coloured text on a terminal,
// JSON into a rotating file when one is configured.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// File switches output to JSON lines in a rotating file.
	File string
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
	return l, nil
}

// New returns the logger and a closer for its output.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	lv := &slog.LevelVar{}
	lv.Set(level)

	if opts.File != "" {
		w := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20,
			MaxBackups: 5,
			MaxAge:     30,
		}
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})), w, nil
	}

	h := tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:       lv,
		TimeFormat:  "15:04:05.000",
		NoColor:     !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: dropEmpty,
	})
	return slog.New(h), nopCloser{}, nil
}

// NewText writes coloured text to w. Colour is off unless w is a terminal.
func NewText(w io.Writer, level slog.Level) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:       level,
		TimeFormat:  time.TimeOnly,
		NoColor:     noColor,
		ReplaceAttr: dropEmpty,
	}))
}

// dropEmpty removes zero-valued attributes from terminal output.
func dropEmpty(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return a
	}
	skip := false
	switch t := a.Value.Any().(type) {
	case string:
		skip = t == ""
	case int64:
		skip = t == 0
	case time.Duration:
		skip = t == 0
	case nil:
		skip = true
	}
	if skip {
		return slog.Attr{}
	}
	return a
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
