// Package logging adapts zerolog to the service logger seam.
package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologAdapter forwards structured key/value pairs to a zerolog.Logger.
type ZerologAdapter struct {
	log zerolog.Logger
}

// New builds a timestamped JSON logger writing to w at the given level.
// Unknown level names fall back to info.
func New(w io.Writer, level string) *ZerologAdapter {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return &ZerologAdapter{log: zerolog.New(w).With().Timestamp().Logger().Level(lvl)}
}

// Wrap adapts an existing zerolog.Logger.
func Wrap(log zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{log: log}
}

func (a *ZerologAdapter) Debug(msg string, args ...any) { emit(a.log.Debug(), msg, args) }
func (a *ZerologAdapter) Info(msg string, args ...any)  { emit(a.log.Info(), msg, args) }
func (a *ZerologAdapter) Warn(msg string, args ...any)  { emit(a.log.Warn(), msg, args) }
func (a *ZerologAdapter) Error(msg string, args ...any) { emit(a.log.Error(), msg, args) }

// emit flattens alternating key/value args onto the event. A trailing key
// without a value is kept with a nil value rather than dropped.
func emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if i+1 < len(args) {
			ev = ev.Interface(key, args[i+1])
		} else {
			ev = ev.Interface(key, nil)
		}
	}
	ev.Msg(msg)
}
