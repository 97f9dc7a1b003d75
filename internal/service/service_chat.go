// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

// offlineReply is the synthetic answer returned in offline mode. Worded as
// an explanation, not an error: the call succeeds and consumes no credit.
const offlineReply = "You are currently in offline mode. The AI assistant needs a connection " +
	"to the Keyport service to answer. Your stored credentials, projects and " +
	"chat history remain fully available; switch back to online mode to chat."

// ChatConfig holds the remote chat endpoint settings.
type ChatConfig struct {
	// BaseURL is the remote backend origin.
	BaseURL string

	// SendPath is the chat completion endpoint. Defaults to /api/chat/send.
	SendPath string

	// Timeout bounds the remote call. Streamed replies go through the
	// proxy instead and are not subject to it.
	Timeout time.Duration
}

type chatService struct {
	history  store.ChatRepository
	license  LicenseSource
	mode     ModeSource
	client   *resty.Client
	sendPath string
	uuid     *utils.UUIDGenerator
	now      clock

	logger *logger.Logger
}

func NewChatService(cfg ChatConfig, history store.ChatRepository, license LicenseSource, mode ModeSource, logger *logger.Logger) ChatService {
	if cfg.SendPath == "" {
		cfg.SendPath = "/api/chat/send"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &chatService{
		history:  history,
		license:  license,
		mode:     mode,
		client:   client,
		sendPath: cfg.SendPath,
		uuid:     utils.NewUUIDGenerator(),
		now:      time.Now,
		logger:   logger,
	}
}

func (s *chatService) History(ctx context.Context) ([]models.ChatMessage, error) {
	return s.history.List(ctx)
}

func (s *chatService) ClearHistory(ctx context.Context, keep int) error {
	return s.history.Clear(ctx, keep)
}

func (s *chatService) Send(ctx context.Context, req models.ChatSendRequest) (models.ChatSendResponse, error) {
	if req.Message == "" {
		return models.ChatSendResponse{}, fmt.Errorf("%w: message is required", ErrValidation)
	}

	if _, err := s.history.Append(ctx, s.stamp(models.ChatRoleUser, req.Message)); err != nil {
		return models.ChatSendResponse{}, fmt.Errorf("record user message: %w", err)
	}

	if s.mode.Get() == models.ModeOffline {
		return s.answerOffline(ctx)
	}

	lic, ok := s.license.Load()
	if !ok {
		return models.ChatSendResponse{}, ErrNotAuthorized
	}
	if !lic.HasCredits() {
		return models.ChatSendResponse{}, ErrCreditsExhausted
	}

	var reply models.ChatSendResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(lic.Key).
		SetBody(req).
		SetResult(&reply).
		Post(s.sendPath)
	if err != nil {
		return models.ChatSendResponse{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return models.ChatSendResponse{}, ErrNotAuthorized
	case resp.StatusCode() == http.StatusPaymentRequired:
		return models.ChatSendResponse{}, ErrCreditsExhausted
	case resp.IsError():
		return models.ChatSendResponse{}, fmt.Errorf("%w: remote answered %d", ErrRemoteUnavailable, resp.StatusCode())
	}

	// credit balances change server-side per call
	if reply.CreditsRemaining != nil {
		s.license.UpdateCredits(*reply.CreditsRemaining)
	}

	if _, err := s.history.Append(ctx, s.stamp(models.ChatRoleAssistant, reply.Reply)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record assistant reply")
	}

	return reply, nil
}

func (s *chatService) answerOffline(ctx context.Context) (models.ChatSendResponse, error) {
	reply := models.ChatSendResponse{
		Reply:       offlineReply,
		CreditsUsed: 0,
		Offline:     true,
	}

	if _, err := s.history.Append(ctx, s.stamp(models.ChatRoleAssistant, reply.Reply)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record offline reply")
	}

	return reply, nil
}

func (s *chatService) stamp(role, content string) models.ChatMessage {
	return models.ChatMessage{
		ID:        s.uuid.Generate(),
		Role:      role,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
}
