// Package cli implements the narrative command-line interface.
//
// The commands compute narrative threads through an anchor item, query
// saved results by edge, export graphs and trees, and serve the same
// operations over HTTP. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - threads: compute the threads through an anchor and save the result
//   - query: list the threads of a result passing through a tree edge
//   - dot: export the graph or the tree as DOT, SVG, PDF or PNG
//   - browse: interactive edge browser
//   - serve: HTTP API
//   - import: copy a JSON dump into SQLite or MongoDB
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Configuration
//
// --config names a TOML file whose [engine], [source] and [server] tables
// provide defaults for the flags.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes timestamped ("15:04:05.00") log lines at level and above.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command, such as loading a corpus.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg and keyvals with the elapsed time under "took", e.g.
//
//	14:32:01.45 INFO Loaded 1200 items from posts.json took=1.234s
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey struct{}

// withLogger attaches l to ctx; PersistentPreRun does this for every command.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
