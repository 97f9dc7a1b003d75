// Package mode persists the agent's online/offline routing flag. The flag
// changes routing decisions for every remote-dependent call, so writes are
// persisted immediately and broadcast to connected UI surfaces.
package mode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/keyport-app/agent/internal/events"
	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/models"
)

const modeFileName = "mode.json"

type persistedMode struct {
	Mode models.Mode `json:"mode"`
}

// Controller owns the persisted mode flag. Safe for concurrent use.
type Controller struct {
	dataDir string
	bus     *events.Bus
	logger  *logger.Logger

	mu      sync.RWMutex
	current models.Mode
}

// NewController loads the persisted mode from dataDir, defaulting to online
// when the file is missing or unreadable.
func NewController(dataDir string, bus *events.Bus, log *logger.Logger) (*Controller, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create mode data dir: %w", err)
	}

	c := &Controller{
		dataDir: dataDir,
		bus:     bus,
		logger:  log,
		current: models.ModeOnline,
	}

	data, err := os.ReadFile(filepath.Join(dataDir, modeFileName))
	if err == nil {
		var p persistedMode
		if err = json.Unmarshal(data, &p); err == nil && p.Mode.Valid() {
			c.current = p.Mode
		}
	}

	return c, nil
}

// Get returns the current mode.
func (c *Controller) Get() models.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set persists the new mode and notifies every connected UI surface so
// in-flight assumptions update without a reload. Setting the current mode
// again persists but does not re-notify.
func (c *Controller) Set(m models.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("invalid mode %q", m)
	}

	c.mu.Lock()
	changed := c.current != m
	c.current = m

	payload, err := json.MarshalIndent(persistedMode{Mode: m}, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(c.dataDir, modeFileName), payload, 0o600)
	}
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("persist mode: %w", err)
	}

	if changed {
		c.bus.Publish(events.TypeModeChanged, m)
	}

	return nil
}
