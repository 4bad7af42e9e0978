package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"

	FormatText = "text"
	FormatJSON = "json"
)

// New builds a Logger for the given backend ("slog" or "zerolog"),
// output format ("text" or "json") and level name.
func New(backend, format, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", BackendSlog:
		lvl, err := parseSlogLevel(level)
		if err != nil {
			return nil, err
		}
		opts := &slog.HandlerOptions{Level: lvl}
		switch strings.ToLower(format) {
		case "", FormatText:
			return NewSlogLogger(slog.New(slog.NewTextHandler(w, opts))), nil
		case FormatJSON:
			return NewSlogLogger(slog.New(slog.NewJSONHandler(w, opts))), nil
		}
		return nil, fmt.Errorf("unknown log format %q", format)

	case BackendZerolog:
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("unknown log level %q: %w", level, err)
		}
		out := w
		switch strings.ToLower(format) {
		case "", FormatText:
			out = zerolog.ConsoleWriter{Out: w, NoColor: true}
		case FormatJSON:
		default:
			return nil, fmt.Errorf("unknown log format %q", format)
		}
		return NewZerologLogger(zerolog.New(out).Level(lvl).With().Timestamp().Logger()), nil
	}

	return nil, fmt.Errorf("unknown log backend %q", backend)
}

func parseSlogLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	return lvl, nil
}
