package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gradefetcher-api/internal/dto"
	"github.com/noah-isme/gradefetcher-api/internal/models"
	"github.com/noah-isme/gradefetcher-api/internal/repository"
)

// BlockService manages authored grader blocks for the authoring side.
type BlockService interface {
	List(ctx context.Context, filter repository.BlockFilter) ([]dto.BlockResponse, error)
	Get(ctx context.Context, id uint) (dto.BlockResponse, error)
	Create(ctx context.Context, payload dto.BlockCreateRequest) (dto.BlockResponse, error)
	Update(ctx context.Context, id uint, payload dto.BlockUpdateRequest) (dto.BlockResponse, error)
	Delete(ctx context.Context, id uint) error
	Schema() []dto.FieldSchema
}

type blockService struct {
	repo      repository.BlockRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewBlockService constructs the authoring service.
func NewBlockService(repo repository.BlockRepository, validate *validator.Validate, logger zerolog.Logger) BlockService {
	return &blockService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "block_service").Logger(),
	}
}

func (s *blockService) List(ctx context.Context, filter repository.BlockFilter) ([]dto.BlockResponse, error) {
	blocks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BlockResponse, 0, len(blocks))
	for _, block := range blocks {
		responses = append(responses, dto.NewBlockResponse(block))
	}

	return responses, nil
}

func (s *blockService) Get(ctx context.Context, id uint) (dto.BlockResponse, error) {
	block, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BlockResponse{}, ErrBlockNotFound
		}
		return dto.BlockResponse{}, err
	}

	return dto.NewBlockResponse(block), nil
}

func (s *blockService) Create(ctx context.Context, payload dto.BlockCreateRequest) (dto.BlockResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BlockResponse{}, err
	}

	block := models.GraderBlock{
		CourseID:                    payload.CourseID,
		DisplayName:                 payload.DisplayName,
		Description:                 payload.Description,
		ButtonText:                  payload.ButtonText,
		UserIdentifier:              payload.UserIdentifier,
		UserIdentifierParameter:     payload.UserIdentifierParameter,
		AuthenticationEndpoint:      payload.AuthenticationEndpoint,
		ClientID:                    payload.ClientID,
		ClientSecret:                payload.ClientSecret,
		AuthenticationUsername:      payload.AuthenticationUsername,
		AuthenticationPassword:      payload.AuthenticationPassword,
		APIKey:                      payload.APIKey,
		GraderEndpoint:              payload.GraderEndpoint,
		HTTPMethod:                  payload.HTTPMethod,
		ActivityIdentifier:          payload.ActivityIdentifier,
		ActivityIdentifierParameter: payload.ActivityIdentifierParameter,
		ExtraParams:                 payload.ExtraParams,
	}
	applyDefaults(&block)

	if err := s.repo.Create(ctx, &block); err != nil {
		return dto.BlockResponse{}, err
	}

	s.logger.Info().Uint("block_id", block.ID).Str("course_id", block.CourseID).Msg("block created")

	return dto.NewBlockResponse(block), nil
}

func (s *blockService) Update(ctx context.Context, id uint, payload dto.BlockUpdateRequest) (dto.BlockResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BlockResponse{}, err
	}

	block, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BlockResponse{}, ErrBlockNotFound
		}
		return dto.BlockResponse{}, err
	}

	applyUpdate(&block, payload)

	if err := s.repo.Update(ctx, &block); err != nil {
		return dto.BlockResponse{}, err
	}

	return dto.NewBlockResponse(block), nil
}

func (s *blockService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlockNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}

// Schema exposes the static field metadata table consumed by the authoring UI.
func (s *blockService) Schema() []dto.FieldSchema {
	return dto.BlockFieldSchema
}

func applyDefaults(block *models.GraderBlock) {
	if block.DisplayName == "" {
		block.DisplayName = "Grade Fetcher"
	}
	if block.ButtonText == "" {
		block.ButtonText = "Grade Me"
	}
	if block.UserIdentifier == "" {
		block.UserIdentifier = models.IdentifierEmail
	}
	if block.UserIdentifierParameter == "" {
		block.UserIdentifierParameter = "email"
	}
	if block.HTTPMethod == "" {
		block.HTTPMethod = models.MethodGet
	}
	if block.ActivityIdentifierParameter == "" {
		block.ActivityIdentifierParameter = "unit_id"
	}
}

func applyUpdate(block *models.GraderBlock, payload dto.BlockUpdateRequest) {
	if payload.DisplayName != nil {
		block.DisplayName = *payload.DisplayName
	}
	if payload.Description != nil {
		block.Description = *payload.Description
	}
	if payload.ButtonText != nil {
		block.ButtonText = *payload.ButtonText
	}
	if payload.UserIdentifier != nil {
		block.UserIdentifier = *payload.UserIdentifier
	}
	if payload.UserIdentifierParameter != nil {
		block.UserIdentifierParameter = *payload.UserIdentifierParameter
	}
	if payload.AuthenticationEndpoint != nil {
		block.AuthenticationEndpoint = *payload.AuthenticationEndpoint
	}
	if payload.ClientID != nil {
		block.ClientID = *payload.ClientID
	}
	if payload.ClientSecret != nil {
		block.ClientSecret = *payload.ClientSecret
	}
	if payload.AuthenticationUsername != nil {
		block.AuthenticationUsername = *payload.AuthenticationUsername
	}
	if payload.AuthenticationPassword != nil {
		block.AuthenticationPassword = *payload.AuthenticationPassword
	}
	if payload.APIKey != nil {
		block.APIKey = *payload.APIKey
	}
	if payload.GraderEndpoint != nil {
		block.GraderEndpoint = *payload.GraderEndpoint
	}
	if payload.HTTPMethod != nil {
		block.HTTPMethod = *payload.HTTPMethod
	}
	if payload.ActivityIdentifier != nil {
		block.ActivityIdentifier = *payload.ActivityIdentifier
	}
	if payload.ActivityIdentifierParameter != nil {
		block.ActivityIdentifierParameter = *payload.ActivityIdentifierParameter
	}
	if payload.ExtraParams != nil {
		block.ExtraParams = *payload.ExtraParams
	}
}
