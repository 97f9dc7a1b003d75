// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/keyport-app/agent/internal/bundle"
	"github.com/keyport-app/agent/internal/config"
	"github.com/keyport-app/agent/internal/crypto"
	"github.com/keyport-app/agent/internal/events"
	handlerhttp "github.com/keyport-app/agent/internal/handler/http"
	"github.com/keyport-app/agent/internal/license"
	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/mode"
	"github.com/keyport-app/agent/internal/proxy"
	"github.com/keyport-app/agent/internal/server"
	"github.com/keyport-app/agent/internal/service"
	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("keyport-agent")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if buildVersion != "N/A" {
		cfg.App.Version = buildVersion
	}

	// everything after this point logs to the data directory
	log = logger.NewFileLogger("keyport-agent", cfg.App.DataDir)
	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage.DSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	masterKey, err := loadOrCreateMasterKey(ctx, storages.Settings)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading master key")
	}

	cipher, err := crypto.NewCipherService(masterKey)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating cipher service")
	}

	bus := events.NewBus()

	licenseManager, err := license.NewManager(license.Config{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.RequestTimeout,
	}, cfg.App.DataDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating license manager")
	}

	modeController, err := mode.NewController(cfg.App.DataDir, bus, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating mode controller")
	}

	bundleManager, err := bundle.NewManager(bundle.Config{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.RequestTimeout,
	}, cfg.App.DataDir, bus, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating bundle manager")
	}

	forward, err := proxy.NewForwarder(proxy.Config{BaseURL: cfg.Remote.BaseURL}, func() (string, bool) {
		lic, ok := licenseManager.Load()
		return lic.Key, ok
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating remote forwarder")
	}

	services := service.NewServices(storages, cipher, service.ChatConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.RequestTimeout,
	}, licenseManager, modeController, log)

	handler := handlerhttp.NewHandler(
		services, licenseManager, modeController, bundleManager,
		forward, bus, cfg.App.Version, log,
	)

	background := workers.NewWorkers(
		workers.NewBundlePoller(bundle.NewPollJob(bundleManager), 0, cfg.Bundle.PollInterval),
		workers.NewBundleStreamer(bundle.NewStreamJob(
			bundleManager,
			cfg.Remote.BaseURL+"/api/bundle/events",
			cfg.Bundle.StreamBackoff,
			log,
		)),
	)
	background.Start(ctx)
	defer background.Stop()

	srv, err := server.NewServer(handler.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

// loadOrCreateMasterKey returns the persisted encryption master key,
// generating and persisting one on first run.
func loadOrCreateMasterKey(ctx context.Context, settings store.SettingsRepository) ([]byte, error) {
	encoded, err := settings.Get(ctx, store.SettingMasterKey)
	switch {
	case err == nil:
		key, decodeErr := base64.StdEncoding.DecodeString(encoded)
		if decodeErr != nil {
			return nil, fmt.Errorf("decode stored master key: %w", decodeErr)
		}
		return key, nil
	case errors.Is(err, store.ErrSettingNotFound):
		key, genErr := crypto.GenerateMasterKey()
		if genErr != nil {
			return nil, genErr
		}
		if setErr := settings.Set(ctx, store.SettingMasterKey, base64.StdEncoding.EncodeToString(key)); setErr != nil {
			return nil, fmt.Errorf("persist master key: %w", setErr)
		}
		return key, nil
	default:
		return nil, err
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
