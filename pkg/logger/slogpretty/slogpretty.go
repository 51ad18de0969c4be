// Package slogpretty renders slog records as colored single-line text
// with indented JSON attributes. It is meant for local development,
// where the service's JSON log output is hard to scan.
package slogpretty

import (
	"context"
	"encoding/json"
	"io"
	stdLog "log"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger picks a handler for the given environment: colored text
// for local, JSON at debug level for dev, JSON at info level for prod
// and anything unrecognized.
func SetupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(NewHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Handler is a slog.Handler for humans. Level filtering is delegated to
// an embedded JSON handler; output goes through a plain log.Logger so a
// record can never recurse back into slog.
type Handler struct {
	slog.Handler
	out   *stdLog.Logger
	attrs []slog.Attr
}

func NewHandler(w io.Writer, opts *slog.HandlerOptions) *Handler {
	return &Handler{
		Handler: slog.NewJSONHandler(w, opts),
		out:     stdLog.New(w, "", 0),
	}
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs, err := h.renderAttrs(r)
	if err != nil {
		return err
	}

	h.out.Println(
		r.Time.Format("[15:04:05.000]"),
		colorLevel(r.Level),
		color.CyanString(r.Message),
		color.WhiteString(attrs),
	)

	return nil
}

// renderAttrs merges the record's attributes with the handler's own and
// pretty-prints them as indented JSON. A record with no attributes
// renders as the empty string.
func (h *Handler) renderAttrs(r slog.Record) (string, error) {
	fields := make(map[string]interface{}, r.NumAttrs()+len(h.attrs))

	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}

	if len(fields) == 0 {
		return "", nil
	}

	b, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func colorLevel(l slog.Level) string {
	s := l.String() + ":"

	switch l {
	case slog.LevelDebug:
		return color.MagentaString(s)
	case slog.LevelInfo:
		return color.BlueString(s)
	case slog.LevelWarn:
		return color.YellowString(s)
	case slog.LevelError:
		return color.RedString(s)
	}

	return s
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		Handler: h.Handler,
		out:     h.out,
		attrs:   append(h.attrs, attrs...),
	}
}

// WithGroup only forwards the group to the embedded handler; the pretty
// renderer flattens attributes.
// TODO: render group names instead of flattening attributes.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		Handler: h.Handler.WithGroup(name),
		out:     h.out,
		attrs:   h.attrs,
	}
}
