// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keyport-app/agent/internal/crypto"
	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/store"
	"github.com/keyport-app/agent/internal/utils"
	"github.com/keyport-app/agent/models"
)

type credentialService struct {
	credentials store.CredentialRepository
	cipher      crypto.CipherService
	activity    ActivityService
	uuid        *utils.UUIDGenerator
	now         clock

	logger *logger.Logger
}

func NewCredentialService(credentials store.CredentialRepository, cipher crypto.CipherService, activity ActivityService, logger *logger.Logger) CredentialService {
	return &credentialService{
		credentials: credentials,
		cipher:      cipher,
		activity:    activity,
		uuid:        utils.NewUUIDGenerator(),
		now:         time.Now,
		logger:      logger,
	}
}

func (s *credentialService) Create(ctx context.Context, credential models.Credential) (models.Credential, error) {
	if credential.Name == "" {
		return models.Credential{}, fmt.Errorf("%w: credential name is required", ErrValidation)
	}
	if credential.Value == "" {
		return models.Credential{}, fmt.Errorf("%w: credential value is required", ErrValidation)
	}

	ciphertext, iv, err := s.cipher.Encrypt(credential.Value)
	if err != nil {
		return models.Credential{}, fmt.Errorf("encrypt credential value: %w", err)
	}

	now := s.now().UTC()
	credential.ID = s.uuid.Generate()
	credential.Value = ""
	credential.Ciphertext = ciphertext
	credential.IV = iv
	credential.CreatedAt = now
	credential.UpdatedAt = now
	if credential.Status == "" {
		credential.Status = models.CredentialStatusActive
	}

	created, err := s.credentials.Create(ctx, credential)
	if err != nil {
		return models.Credential{}, err
	}

	s.activity.Record(ctx, models.ActivityCredentialCreated, created.Name)
	s.logger.Info().Str("id", created.ID).Msg("credential created")

	return created, nil
}

func (s *credentialService) Get(ctx context.Context, id string) (models.Credential, error) {
	credential, err := s.credentials.GetByID(ctx, id)
	if err != nil {
		return models.Credential{}, err
	}

	return s.reveal(credential)
}

func (s *credentialService) List(ctx context.Context, filter store.CredentialFilter) ([]models.Credential, error) {
	credentials, err := s.credentials.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range credentials {
		credentials[i], err = s.reveal(credentials[i])
		if err != nil {
			return nil, err
		}
	}

	return credentials, nil
}

func (s *credentialService) Update(ctx context.Context, id string, change CredentialChange) (models.Credential, error) {
	update := store.CredentialUpdate{
		Name:     change.Name,
		Provider: change.Provider,
		Type:     change.Type,
		Metadata: change.Metadata,
		Tags:     change.Tags,
		Favorite: change.Favorite,
		Status:   change.Status,
	}

	// A new plaintext replaces the stored secret; its absence preserves
	// the existing ciphertext and iv untouched.
	if change.Value != nil {
		if *change.Value == "" {
			return models.Credential{}, fmt.Errorf("%w: credential value cannot be empty", ErrValidation)
		}
		ciphertext, iv, err := s.cipher.Encrypt(*change.Value)
		if err != nil {
			return models.Credential{}, fmt.Errorf("encrypt credential value: %w", err)
		}
		rotatedAt := s.now()
		update.Ciphertext = &ciphertext
		update.IV = &iv
		update.RotatedAt = &rotatedAt
	}

	updated, err := s.credentials.Update(ctx, id, update)
	if err != nil {
		return models.Credential{}, err
	}

	s.activity.Record(ctx, models.ActivityCredentialUpdated, updated.Name)

	return s.reveal(updated)
}

func (s *credentialService) Delete(ctx context.Context, id string) error {
	credential, err := s.credentials.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.credentials.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.Record(ctx, models.ActivityCredentialDeleted, credential.Name)
	s.logger.Info().Str("id", id).Msg("credential deleted")

	return nil
}

// reveal decrypts the stored ciphertext into the transient Value field.
func (s *credentialService) reveal(credential models.Credential) (models.Credential, error) {
	value, err := s.cipher.Decrypt(credential.Ciphertext, credential.IV)
	if err != nil {
		return models.Credential{}, fmt.Errorf("decrypt credential %s: %w", credential.ID, err)
	}
	credential.Value = value

	return credential, nil
}
