package service

import (
	"github.com/keyport-app/agent/internal/crypto"
	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/store"
)

// Services bundles the agent's domain services for handler wiring.
type Services struct {
	Credentials CredentialService
	Projects    ProjectService
	Chat        ChatService
	Activity    ActivityService
}

func NewServices(storages *store.Storages, cipher crypto.CipherService, chatCfg ChatConfig, license LicenseSource, mode ModeSource, logger *logger.Logger) *Services {
	activity := NewActivityService(storages.Activity, logger)
	credentials := NewCredentialService(storages.Credentials, cipher, activity, logger)

	return &Services{
		Credentials: credentials,
		Projects:    NewProjectService(storages.Projects, credentials, activity, logger),
		Chat:        NewChatService(chatCfg, storages.Chat, license, mode, logger),
		Activity:    activity,
	}
}
