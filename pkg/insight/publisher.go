// Package insight defines the hand-off point for certified reasoning
// paths. When a consolidation can proceed, the engine publishes the path
// and summary to a Publisher; downstream mining of cross-session insights
// is owned by whatever backend implements it.
package insight

import "context"

// Publisher publishes certified-path events to an insight backend.
type Publisher interface {
	PublishPath(ctx context.Context, event *PathCertifiedEvent) error
	Close() error
}
