package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keyport-app/agent/internal/logger"
)

// newTestStorages opens an in-memory sqlite database with the full schema
// applied. Each call gets an isolated database.
func newTestStorages(t *testing.T) *Storages {
	t.Helper()

	storages, err := NewStorages(context.Background(), ":memory:", logger.Nop())
	require.NoError(t, err)

	return storages
}

func testTime(offsetSeconds int) time.Time {
	return time.Unix(1700000000+int64(offsetSeconds), 0).UTC()
}
