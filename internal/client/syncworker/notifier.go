package syncworker

import (
	"context"

	"github.com/dkovalev/lotkeeper/internal/logging"
)

// Notifier surfaces sync trouble to the user. The worker calls it at most
// once per continuous error episode; recovery resets the episode.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// LogNotifier is the default sink: a warn-level log line.
type LogNotifier struct {
	Log logging.Logger
}

func (n *LogNotifier) Notify(ctx context.Context, msg string) {
	n.Log.Warn(ctx, msg)
}

// FuncNotifier adapts a function, mainly for the CLI and tests.
type FuncNotifier func(ctx context.Context, msg string)

func (f FuncNotifier) Notify(ctx context.Context, msg string) { f(ctx, msg) }
