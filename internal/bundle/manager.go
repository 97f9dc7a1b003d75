// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

// Package bundle keeps the locally served static UI bundle in sync with the
// remote service. A sync run walks the state machine
//
//	idle -> checking -> {up-to-date | downloading -> installing -> synced | error}
//
// and installs new revisions with an atomic symlink flip over the serving
// path: readers always see either the old or the new bundle in full, never
// a half-written one.
package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/keyport-app/agent/internal/events"
	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

const (
	manifestFileName = "bundle-manifest.json"
	bundleDirName    = "bundle"

	// entryDocument must exist at the bundle root for the bundle to be
	// considered valid.
	entryDocument = "index.html"
)

// Config holds the remote endpoint settings for the sync manager.
type Config struct {
	// BaseURL is the remote service root.
	BaseURL string

	// ManifestPath is the route returning {version, hash}.
	ManifestPath string

	// ArchivePath is the route returning the .tar.gz bundle archive.
	ArchivePath string

	// Timeout bounds the manifest and archive fetches.
	Timeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.ManifestPath == "" {
		c.ManifestPath = "/api/bundle/manifest"
	}
	if c.ArchivePath == "" {
		c.ArchivePath = "/api/bundle/download"
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
}

// Manager owns the installed bundle directory and the sync state machine.
// Sync runs are serialized; Status and BundleDir may be read concurrently.
type Manager struct {
	client       *resty.Client
	dataDir      string
	bus          *events.Bus
	logger       *logger.Logger
	ids          *utils.UUIDGenerator
	paths        managerPaths
	manifestPath string
	archivePath  string

	syncMu  sync.Mutex // serializes CheckAndSync runs
	retired string     // replaced revision dir awaiting removal, guarded by syncMu

	mu        sync.RWMutex
	state     string
	lastError string
	checkedAt *time.Time
	installed *models.BundleManifest
	available *models.BundleManifest
}

// NewManager constructs a Manager rooted at dataDir and loads the manifest
// of any previously installed bundle.
func NewManager(cfg Config, dataDir string, bus *events.Bus, log *logger.Logger) (*Manager, error) {
	cfg.applyDefaults()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create bundle data dir: %w", err)
	}

	m := &Manager{
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout),
		dataDir:      dataDir,
		bus:          bus,
		logger:       log,
		ids:          utils.NewUUIDGenerator(),
		state:        models.SyncStateIdle,
		manifestPath: cfg.ManifestPath,
		archivePath:  cfg.ArchivePath,
		paths: managerPaths{
			manifest: filepath.Join(dataDir, manifestFileName),
			bundle:   filepath.Join(dataDir, bundleDirName),
		},
	}

	m.sweepStaleRevisions()
	m.loadInstalledManifest()

	return m, nil
}

// sweepStaleRevisions removes extracted revision directories the serving
// path no longer references. They accumulate when a retired revision
// outlives the process that deferred its removal.
func (m *Manager) sweepStaleRevisions() {
	current := m.currentTarget()

	entries, err := os.ReadDir(m.dataDir)
	if err != nil {
		return
	}

	for _, e := range entries {
		name := e.Name()
		stale := strings.HasPrefix(name, "bundle-rev-") ||
			strings.HasPrefix(name, "bundle-link-") ||
			strings.HasPrefix(name, "bundle-old-")
		if !stale {
			continue
		}

		full := filepath.Join(m.dataDir, name)
		if full == current {
			continue
		}
		if err := os.RemoveAll(full); err != nil {
			m.logger.Warn().Err(err).Str("dir", full).Msg("failed to remove stale bundle revision")
		}
	}
}

type managerPaths struct {
	manifest string
	bundle   string
}

// BundleDir returns the serving path of the installed bundle. The directory
// may not exist before the first successful sync.
func (m *Manager) BundleDir() string {
	return m.paths.bundle
}

// Installed returns the manifest of the currently installed bundle, if any.
func (m *Manager) Installed() (models.BundleManifest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.installed == nil {
		return models.BundleManifest{}, false
	}
	return *m.installed, true
}

// Status returns a snapshot of the sync state machine.
func (m *Manager) Status() models.SyncStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := models.SyncStatus{
		State:     m.state,
		LastError: m.lastError,
		CheckedAt: m.checkedAt,
	}
	if m.installed != nil {
		installed := *m.installed
		status.Installed = &installed
	}
	if m.available != nil {
		available := *m.available
		status.Available = &available
	}

	return status
}

// CheckAndSync fetches the remote manifest and, when the hash differs from
// the installed one, downloads and atomically installs the new bundle. Any
// failure transitions the state machine to error with the reason retained,
// leaving the previously installed bundle untouched.
func (m *Manager) CheckAndSync(ctx context.Context) error {
	if !m.syncMu.TryLock() {
		return ErrSyncInProgress
	}
	defer m.syncMu.Unlock()

	log := m.logger

	m.setState(models.SyncStateChecking, "")

	remote, err := m.fetchManifest(ctx)
	if err != nil {
		m.setState(models.SyncStateError, err.Error())
		return err
	}
	m.markChecked(remote)

	if installed, ok := m.Installed(); ok && installed.Hash == remote.Hash {
		m.setState(models.SyncStateUpToDate, "")
		return nil
	}

	log.Info().
		Str("version", remote.Version).
		Str("hash", remote.Hash).
		Msg("new bundle revision available")

	m.setState(models.SyncStateDownloading, "")
	archive, err := m.fetchArchive(ctx)
	if err != nil {
		m.setState(models.SyncStateError, err.Error())
		return err
	}

	// extract into a fresh uniquely named revision directory next to the
	// serving path, so the symlink flip stays on one filesystem
	revDir := filepath.Join(m.dataDir, "bundle-rev-"+m.ids.Generate())
	if err = extractArchive(archive, revDir); err != nil {
		_ = os.RemoveAll(revDir)
		m.setState(models.SyncStateError, err.Error())
		return err
	}

	if _, err = os.Stat(filepath.Join(revDir, entryDocument)); err != nil {
		_ = os.RemoveAll(revDir)
		err = fmt.Errorf("%w: archive has no %s", ErrCorruptArchive, entryDocument)
		m.setState(models.SyncStateError, err.Error())
		return err
	}

	m.setState(models.SyncStateInstalling, "")
	if err = m.swapInstalled(revDir); err != nil {
		_ = os.RemoveAll(revDir)
		m.setState(models.SyncStateError, err.Error())
		return err
	}

	m.persistManifest(remote)

	m.mu.Lock()
	installed := remote
	m.installed = &installed
	m.available = nil
	m.mu.Unlock()

	m.setState(models.SyncStateSynced, "")
	m.bus.Publish(events.TypeBundleSynced, remote)

	log.Info().
		Str("version", remote.Version).
		Msg("bundle installed")

	return nil
}

// swapInstalled points the serving path at newDir by renaming a fresh
// symlink over it. The symlink replacement is a single rename, so a reader
// resolving the serving path concurrently sees either the old revision or
// the new one in full, never a missing or partial directory. The replaced
// revision stays on disk until the next swap, so an open that resolved the
// serving path just before the flip can still finish against the old
// target.
func (m *Manager) swapInstalled(newDir string) error {
	previous := m.installedTarget()

	tmpLink := filepath.Join(m.dataDir, "bundle-link-"+m.ids.Generate())
	if err := os.Symlink(newDir, tmpLink); err != nil {
		return fmt.Errorf("create bundle symlink: %w", err)
	}

	if err := os.Rename(tmpLink, m.paths.bundle); err != nil {
		_ = os.Remove(tmpLink)
		return fmt.Errorf("install new bundle: %w", err)
	}

	if m.retired != "" && m.retired != newDir && m.retired != previous {
		if err := os.RemoveAll(m.retired); err != nil {
			m.logger.Warn().Err(err).Str("dir", m.retired).Msg("failed to remove retired bundle revision")
		}
	}
	m.retired = previous

	return nil
}

// currentTarget resolves the serving symlink, or returns "" when the
// serving path is absent or not a symlink.
func (m *Manager) currentTarget() string {
	target, err := os.Readlink(m.paths.bundle)
	if err != nil {
		return ""
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(m.dataDir, target)
	}
	return target
}

// installedTarget resolves the directory the serving path currently points
// at. A plain directory left by an older layout is renamed aside so the
// symlink can take its place, and reported as the previous target for
// cleanup.
func (m *Manager) installedTarget() string {
	info, err := os.Lstat(m.paths.bundle)
	if err != nil {
		return ""
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return m.currentTarget()
	}

	asideDir := fmt.Sprintf("%s-old-%d", m.paths.bundle, time.Now().UnixNano())
	if err := os.Rename(m.paths.bundle, asideDir); err != nil {
		m.logger.Warn().Err(err).Msg("failed to move plain bundle directory aside")
		return ""
	}

	return asideDir
}

func (m *Manager) fetchManifest(ctx context.Context) (models.BundleManifest, error) {
	resp, err := m.client.R().SetContext(ctx).Get(m.clientPath("manifest"))
	if err != nil {
		return models.BundleManifest{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if resp.IsError() {
		return models.BundleManifest{}, fmt.Errorf("%w: manifest http %d", ErrRemoteUnavailable, resp.StatusCode())
	}

	var manifest models.BundleManifest
	if err = json.Unmarshal(resp.Body(), &manifest); err != nil {
		return models.BundleManifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if manifest.Hash == "" {
		return models.BundleManifest{}, fmt.Errorf("manifest missing content hash")
	}

	return manifest, nil
}

func (m *Manager) fetchArchive(ctx context.Context) ([]byte, error) {
	resp, err := m.client.R().SetContext(ctx).Get(m.clientPath("archive"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: archive http %d", ErrRemoteUnavailable, resp.StatusCode())
	}

	return resp.Body(), nil
}

func (m *Manager) clientPath(kind string) string {
	if kind == "manifest" {
		return m.manifestPath
	}
	return m.archivePath
}

func (m *Manager) setState(state, lastError string) {
	m.mu.Lock()
	m.state = state
	m.lastError = lastError
	m.mu.Unlock()
}

func (m *Manager) markChecked(available models.BundleManifest) {
	now := time.Now().UTC()

	m.mu.Lock()
	m.checkedAt = &now
	if m.installed == nil || m.installed.Hash != available.Hash {
		a := available
		m.available = &a
	} else {
		m.available = nil
	}
	m.mu.Unlock()
}

func (m *Manager) persistManifest(manifest models.BundleManifest) {
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err == nil {
		err = os.WriteFile(m.paths.manifest, payload, 0o600)
	}
	if err != nil {
		m.logger.Err(err).Msg("persist bundle manifest")
	}
}

func (m *Manager) loadInstalledManifest() {
	data, err := os.ReadFile(m.paths.manifest)
	if err != nil {
		return
	}

	var manifest models.BundleManifest
	if err = json.Unmarshal(data, &manifest); err != nil || manifest.Hash == "" {
		m.logger.Warn().Err(err).Msg("discarding unreadable bundle manifest")
		_ = os.Remove(m.paths.manifest)
		return
	}

	// the manifest only counts if the bundle directory actually contains
	// an entry document
	if _, err = os.Stat(filepath.Join(m.paths.bundle, entryDocument)); err != nil {
		return
	}

	m.installed = &manifest
	m.state = models.SyncStateIdle
}
