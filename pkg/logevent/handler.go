// Package logevent is a slog handler that counts events. Any record carrying
// an "event" attribute increments the logged_events counter, whether or not
// its level is high enough to be written.
package logevent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const EventAttrKey = "event"

var eventCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "logged_events",
	Help: "Count logged events",
}, []string{"level", "group", "event"})

type handler struct {
	opt   *slog.HandlerOptions
	out   *output
	attrs []slog.Attr
	group []string
}

// output is shared by every handler derived from the same NewHandler call.
type output struct {
	lock sync.Mutex
	w    io.Writer
}

// NewHandler writes one JSON array per record to w, or to stdout if w is
// nil: [time, level, group/event, message, {attrs}].
func NewHandler(w io.Writer, opt *slog.HandlerOptions) slog.Handler {
	if w == nil {
		w = os.Stdout
	}
	if opt == nil {
		opt = &slog.HandlerOptions{}
	}
	return &handler{opt: opt, out: &output{w: w}}
}

var _ slog.Handler = &handler{}

// Enabled implements slog.Handler.
func (l *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return true //pass all logs to handler so events can be counted ( and then discarded if under log level )
}

func (l *handler) minLevel() slog.Level {
	if l.opt.Level == nil {
		return slog.LevelInfo
	}
	return l.opt.Level.Level()
}

// Handle implements slog.Handler.
func (l *handler) Handle(ctx context.Context, r slog.Record) error {

	attr := make(map[string]any)
	level := r.Level
	var event string

	attrFunc := func(a slog.Attr) bool {
		key := a.Key
		i := a.Value.Any()
		if i == nil {
			return true
		}
		if key == EventAttrKey {
			event = a.Value.String()
			return true
		}
		attr[key] = a.Value.String()
		return true
	}

	for _, a := range l.attrs {
		attrFunc(a)
	}
	r.Attrs(attrFunc)

	group := "/" + strings.Join(l.group, "/")
	if len(l.group) > 0 {
		group += "/"
	}

	if event != "" {
		eventCounter.WithLabelValues(level.String(), group, event).Inc()
		group += event
	}
	if level < l.minLevel() {
		return nil
	}

	line := []any{r.Time.Format(time.RFC3339), level.String(), group, r.Message, attr}

	l.out.lock.Lock()
	defer l.out.lock.Unlock()
	e := json.NewEncoder(l.out.w)
	e.SetEscapeHTML(false)
	return e.Encode(line)
}

// WithAttrs implements slog.Handler.
func (l *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	copy := &handler{opt: l.opt, out: l.out}
	copy.attrs = append(copy.attrs, l.attrs...)
	copy.attrs = append(copy.attrs, attrs...)
	copy.group = append(copy.group, l.group...)
	return copy
}

// WithGroup implements slog.Handler.
func (l *handler) WithGroup(name string) slog.Handler {
	copy := &handler{opt: l.opt, out: l.out}
	copy.attrs = append(copy.attrs, l.attrs...)
	copy.group = append(copy.group, l.group...)
	copy.group = append(copy.group, name)
	return copy
}

var ctxKey = &handler{}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey, logger)
}

// LoggerFromContext falls back to slog.Default when ctx carries no logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxKey).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// ParseLevel accepts the slog level names, eg "debug" or "WARN".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(s))
	return level, err
}
