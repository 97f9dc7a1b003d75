// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

// Package license caches the remotely issued license on disk and mediates
// every call to the licensing service. The cache is never locally
// authoritative: a rejected validation clears it, while a plain network
// failure keeps it usable for offline operation.
package license

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

const (
	licenseFileName  = "license.json"
	deviceIDFileName = "device-id"
)

// Config holds the remote endpoint settings for the license manager.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Manager owns the cached license and the device identity. All methods are
// safe for concurrent use.
type Manager struct {
	client  *resty.Client
	dataDir string
	logger  *logger.Logger

	mu       sync.RWMutex
	cached   *models.License
	deviceID string
}

// remoteLicense is the wire shape the licensing service uses in activate and
// validate responses.
type remoteLicense struct {
	LicenseKey string     `json:"licenseKey"`
	Email      string     `json:"email"`
	Plan       string     `json:"plan"`
	Credits    float64    `json:"credits"`
	Unlimited  bool       `json:"unlimited"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// NewManager constructs a Manager rooted at dataDir. It loads the persisted
// device id (generating and persisting a fresh UUID on first run) and any
// previously cached license. A corrupt license file is discarded, not fatal.
func NewManager(cfg Config, dataDir string, log *logger.Logger) (*Manager, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create license data dir: %w", err)
	}

	m := &Manager{
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout),
		dataDir: dataDir,
		logger:  log,
	}

	if err := m.loadDeviceID(); err != nil {
		return nil, err
	}
	m.loadCachedLicense()

	return m, nil
}

// DeviceID returns the persisted device identifier included in every remote
// license call.
func (m *Manager) DeviceID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deviceID
}

// Load returns the cached license, if any.
func (m *Manager) Load() (models.License, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cached == nil {
		return models.License{}, false
	}
	return *m.cached, true
}

// Activate exchanges account credentials for a license, caches it, and
// persists the cache.
func (m *Manager) Activate(ctx context.Context, email, password string) (models.License, error) {
	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"email":    email,
			"password": password,
			"deviceId": m.DeviceID(),
		}).
		Post("/api/license/activate")
	if err != nil {
		return models.License{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return models.License{}, ErrInvalidCredentials
	}
	if resp.IsError() {
		return models.License{}, fmt.Errorf("%w: http %d", ErrRemoteUnavailable, resp.StatusCode())
	}

	lic, err := m.storeRemoteLicense(resp.Body())
	if err != nil {
		return models.License{}, err
	}

	return lic, nil
}

// Validate asks the licensing service to re-validate key. On explicit
// rejection the local cache is cleared entirely and ErrRejected is returned;
// the agent must not keep honoring a revoked license. A network failure
// leaves the cache untouched and returns ErrRemoteUnavailable.
func (m *Manager) Validate(ctx context.Context, key string) (models.License, error) {
	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"licenseKey": key,
			"deviceId":   m.DeviceID(),
		}).
		Post("/api/license/validate")
	if err != nil {
		return models.License{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized,
		resp.StatusCode() == http.StatusForbidden,
		resp.StatusCode() == http.StatusGone:
		if clearErr := m.Clear(); clearErr != nil {
			m.logger.Err(clearErr).Msg("failed to clear rejected license")
		}
		return models.License{}, ErrRejected
	case resp.IsError():
		// server-side trouble is connectivity, not rejection: keep the cache
		return models.License{}, fmt.Errorf("%w: http %d", ErrRemoteUnavailable, resp.StatusCode())
	}

	lic, err := m.storeRemoteLicense(resp.Body())
	if err != nil {
		return models.License{}, err
	}

	return lic, nil
}

// Deactivate releases the license on the remote side, best effort, then
// clears the local cache regardless of the remote outcome.
func (m *Manager) Deactivate(ctx context.Context, key string) error {
	_, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"licenseKey": key,
			"deviceId":   m.DeviceID(),
		}).
		Post("/api/license/deactivate")
	if err != nil {
		m.logger.Warn().Err(err).Msg("deactivate call failed, clearing local cache anyway")
	}

	return m.Clear()
}

// Clear removes the cached license from memory and disk.
func (m *Manager) Clear() error {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()

	path := filepath.Join(m.dataDir, licenseFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove license file: %w", err)
	}

	return nil
}

// UpdateCredits replaces the cached credit balance after a metered remote
// call reported a new one, and persists the change. A no-op when nothing is
// cached.
func (m *Manager) UpdateCredits(credits float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached == nil {
		return
	}
	m.cached.Credits = credits
	m.persistLocked()
}

func (m *Manager) storeRemoteLicense(body []byte) (models.License, error) {
	var remote remoteLicense
	if err := json.Unmarshal(body, &remote); err != nil {
		return models.License{}, fmt.Errorf("decode license response: %w", err)
	}
	if remote.LicenseKey == "" {
		return models.License{}, errors.New("license response missing key")
	}

	lic := models.License{
		Key:         remote.LicenseKey,
		Email:       remote.Email,
		Plan:        remote.Plan,
		Credits:     remote.Credits,
		Unlimited:   remote.Unlimited,
		ExpiresAt:   remote.ExpiresAt,
		ValidatedAt: time.Now().UTC(),
	}
	if lic.ExpiresAt == nil {
		lic.ExpiresAt = parseExpiryFromJWT(remote.LicenseKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = &lic
	m.persistLocked()

	return lic, nil
}

// persistLocked writes the cached license to disk. Callers must hold m.mu.
func (m *Manager) persistLocked() {
	if m.cached == nil {
		return
	}

	payload, err := json.MarshalIndent(m.cached, "", "  ")
	if err != nil {
		m.logger.Err(err).Msg("encode license cache")
		return
	}

	path := filepath.Join(m.dataDir, licenseFileName)
	if err = os.WriteFile(path, payload, 0o600); err != nil {
		m.logger.Err(err).Msg("write license cache")
	}
}

func (m *Manager) loadCachedLicense() {
	path := filepath.Join(m.dataDir, licenseFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn().Err(err).Msg("read license cache")
		}
		return
	}

	var lic models.License
	if err = json.Unmarshal(data, &lic); err != nil || lic.Key == "" {
		m.logger.Warn().Err(err).Msg("discarding unreadable license cache")
		_ = os.Remove(path)
		return
	}

	m.cached = &lic
}

func (m *Manager) loadDeviceID() error {
	path := filepath.Join(m.dataDir, deviceIDFileName)

	data, err := os.ReadFile(path)
	if err == nil && len(strings.TrimSpace(string(data))) > 0 {
		m.deviceID = strings.TrimSpace(string(data))
		return nil
	}

	id := utils.NewUUIDGenerator().Generate()
	if err = os.WriteFile(path, []byte(id), 0o600); err != nil {
		return fmt.Errorf("persist device id: %w", err)
	}

	m.deviceID = id
	return nil
}

// parseExpiryFromJWT pulls the "exp" claim out of a JWT-shaped license key
// without verifying the signature. The expiry is display/cache material
// only; authorization always goes through remote validation.
func parseExpiryFromJWT(key string) *time.Time {
	if strings.Count(key, ".") != 2 {
		return nil
	}

	token, _, err := jwt.NewParser().ParseUnverified(key, jwt.MapClaims{})
	if err != nil {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	t := exp.Time.UTC()
	return &t
}
