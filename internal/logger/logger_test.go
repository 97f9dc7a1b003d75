package logger

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_NotNil(t *testing.T) {
	log := NewLogger("test")
	require.NotNil(t, log)
}

func TestNewFileLogger_CreatesFile(t *testing.T) {
	dir := t.TempDir()

	log := NewFileLogger("agent", dir)
	require.NotNil(t, log)
	log.Info().Msg("hello")

	data, err := os.ReadFile(filepath.Join(dir, "agent.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hello"`)
	assert.Contains(t, string(data), `"role":"agent"`)
}

func TestNop_DiscardsOutput(t *testing.T) {
	log := Nop()
	require.NotNil(t, log)
	log.Error().Msg("should go nowhere") // must not panic
}

func TestGetChildLogger(t *testing.T) {
	parent := Nop()
	child := parent.GetChildLogger()
	require.NotNil(t, child)
}

func TestFromContext_NoLoggerAttached(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
}

func TestFromRequest_NotNil(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	log := FromRequest(r)
	require.NotNil(t, log)
}
