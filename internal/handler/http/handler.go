package http

import (
	"net/http"

	"github.com/keyport-app/agent/internal/bundle"
	"github.com/keyport-app/agent/internal/events"
	"github.com/keyport-app/agent/internal/license"
	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/mode"
	"github.com/keyport-app/agent/internal/service"
)

type Handler struct {
	services *service.Services
	license  *license.Manager
	mode     *mode.Controller
	bundle   *bundle.Manager
	forward  http.Handler
	bus      *events.Bus
	version  string

	logger *logger.Logger
}

func NewHandler(
	services *service.Services,
	licenseManager *license.Manager,
	modeController *mode.Controller,
	bundleManager *bundle.Manager,
	forward http.Handler,
	bus *events.Bus,
	version string,
	logger *logger.Logger,
) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		license:  licenseManager,
		mode:     modeController,
		bundle:   bundleManager,
		forward:  forward,
		bus:      bus,
		version:  version,
		logger:   logger,
	}
}
