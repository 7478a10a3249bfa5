package cli

import (
	"context"
	"os"

	"github.com/matzehuels/narrative/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version. It is
// an alternative to setting the buildinfo variables through ldflags.
func SetVersion(v, c, d string) {
	buildinfo.Version = v
	buildinfo.Commit = c
	buildinfo.Date = d
}

// Execute runs the narrative CLI with ctx and returns the error of the
// failing command, if any.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	return New(os.Stderr, LogInfo).RootCommand().ExecuteContext(ctx)
}
