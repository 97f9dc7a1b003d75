// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// starting and stopping multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Start launches the worker's background processing and returns immediately;
// the worker runs until ctx is cancelled or Stop is called. Stop blocks
// until the worker has fully exited.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
