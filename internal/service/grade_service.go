package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gradefetcher-api/internal/dto"
	"github.com/noah-isme/gradefetcher-api/internal/grader"
	"github.com/noah-isme/gradefetcher-api/internal/models"
	"github.com/noah-isme/gradefetcher-api/internal/observability"
	"github.com/noah-isme/gradefetcher-api/internal/publisher"
	"github.com/noah-isme/gradefetcher-api/internal/repository"
)

// ErrBlockNotFound indicates the requested block does not exist.
var ErrBlockNotFound = errors.New("block not found")

// ErrGradeNotFound indicates no grade has been fetched yet for the user.
var ErrGradeNotFound = errors.New("grade not found")

// Learner-facing messages for the failure kinds a fetch can hit. Upstream
// failures with their own errorMessage pass through verbatim instead.
const (
	MsgGraderEndpointInvalid = "Grader endpoint is not a valid url"
	MsgAuthEndpointInvalid   = "Authentication endpoint is not a valid url"
	MsgGenericFailure        = "Something went wrong while fetching your grade. Please try again or contact the course team."
)

// GradeError carries the message shown to the learner; the cause stays in the
// operator log.
type GradeError struct {
	Message string
	Cause   error
}

func (e *GradeError) Error() string {
	return e.Message
}

func (e *GradeError) Unwrap() error {
	return e.Cause
}

// Identity is the host-supplied user for one grade request.
type Identity struct {
	UserID             uint
	Email              string
	Username           string
	Role               string
	AnonymousStudentID string
}

func (i Identity) forGrader() grader.Identity {
	return grader.Identity{
		UserID:             fmt.Sprintf("%d", i.UserID),
		Email:              i.Email,
		Username:           i.Username,
		Role:               i.Role,
		AnonymousStudentID: i.AnonymousStudentID,
	}
}

// FetchClient abstracts the outbound grader client.
type FetchClient interface {
	Fetch(ctx context.Context, cfg grader.Config, identity grader.Identity) (grader.Normalized, error)
}

// GradeService runs the grade fetch end to end and serves the persisted state.
type GradeService interface {
	FetchGrade(ctx context.Context, blockID uint, identity Identity) (dto.GradeResponse, error)
	LatestGrade(ctx context.Context, blockID, userID uint) (dto.LatestGradeResponse, error)
}

type gradeService struct {
	blocks    repository.BlockRepository
	results   repository.GradeResultRepository
	fetcher   FetchClient
	cache     *redis.Client
	cacheTTL  time.Duration
	publisher publisher.GradePublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewGradeService constructs the grade service.
func NewGradeService(blocks repository.BlockRepository, results repository.GradeResultRepository, fetcher FetchClient, cache *redis.Client, cacheTTL time.Duration, gradePublisher publisher.GradePublisher, logger zerolog.Logger) GradeService {
	if gradePublisher == nil {
		gradePublisher = publisher.NewNoop()
	}

	return &gradeService{
		blocks:    blocks,
		results:   results,
		fetcher:   fetcher,
		cache:     cache,
		cacheTTL:  cacheTTL,
		publisher: gradePublisher,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "grade_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gradefetcher-api/internal/service/grade"),
		now:       time.Now,
	}
}

// FetchGrade proxies one grade request: load the block, run the outbound
// fetch, persist and publish the outcome. Any failure is terminal for the
// invocation; no partial grade is ever published.
func (s *gradeService) FetchGrade(ctx context.Context, blockID uint, identity Identity) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grade.fetch", trace.WithAttributes(
		attribute.Int64("grade.block_id", int64(blockID)),
		attribute.Int64("grade.user_id", int64(identity.UserID)),
	))
	defer span.End()

	block, err := s.blocks.GetByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "block_not_found")
			return dto.GradeResponse{}, ErrBlockNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	start := s.now()
	normalized, err := s.fetcher.Fetch(ctx, graderConfig(block), identity.forGrader())
	observability.UpstreamLatency().WithLabelValues("grader").Observe(s.now().Sub(start).Seconds())
	if err != nil {
		outcome := upstreamOutcome(err)
		observability.UpstreamCalls().WithLabelValues("grader", outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return dto.GradeResponse{}, s.mapFetchError(err, blockID)
	}
	observability.UpstreamCalls().WithLabelValues("grader", "success").Inc()

	reasons := s.sanitizeReasons(normalized.Reasons)
	html := renderFragment(normalized.Grade, reasons)

	result := models.GradeResult{
		BlockID:    block.ID,
		UserID:     identity.UserID,
		Grade:      normalized.Grade,
		HTMLFormat: html,
		FetchedAt:  s.now(),
	}
	if err := result.SetReasons(reasons); err != nil {
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	if err := s.results.Upsert(ctx, &result); err != nil {
		s.logger.Warn().Err(err).Uint("block_id", block.ID).Uint("user_id", identity.UserID).Msg("failed to persist grade result")
		span.RecordError(err)
	} else {
		s.invalidateCache(ctx, block.ID, identity.UserID)
	}

	if normalized.Grade >= 0 {
		event := dto.GradeEvent{
			BlockID:   block.ID,
			UserID:    identity.UserID,
			Value:     float64(normalized.Grade) / 100,
			MaxValue:  1,
			EmittedAt: s.now(),
		}
		if err := s.publisher.PublishGrade(ctx, event); err != nil {
			s.logger.Warn().Err(err).Uint("block_id", block.ID).Msg("failed to publish grade event")
			span.RecordError(err)
		}
	}

	span.SetAttributes(attribute.Int("grade.value", normalized.Grade))

	return dto.GradeResponse{Grade: normalized.Grade, Reason: reasons, HTMLFormat: html}, nil
}

// LatestGrade returns the persisted result of the user's last successful
// fetch, reading through the cache.
func (s *gradeService) LatestGrade(ctx context.Context, blockID, userID uint) (dto.LatestGradeResponse, error) {
	cacheKey := latestGradeKey(blockID, userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.LatestGradeResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("block_id", blockID).Uint("user_id", userID).Msg("latest grade cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read latest grade cache")
		}
	}

	result, err := s.results.GetByBlockAndUser(ctx, blockID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LatestGradeResponse{}, ErrGradeNotFound
		}
		return dto.LatestGradeResponse{}, err
	}

	response := dto.NewLatestGradeResponse(result)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store latest grade cache")
			}
		}
	}

	return response, nil
}

func (s *gradeService) mapFetchError(err error, blockID uint) error {
	switch {
	case errors.Is(err, grader.ErrGraderEndpointInvalid):
		return &GradeError{Message: MsgGraderEndpointInvalid, Cause: err}
	case errors.Is(err, grader.ErrAuthEndpointInvalid):
		return &GradeError{Message: MsgAuthEndpointInvalid, Cause: err}
	}

	var upstream *grader.UpstreamError
	if errors.As(err, &upstream) {
		return &GradeError{Message: upstream.Message, Cause: err}
	}

	// Auth exchange and transport failures surface one generic message; the
	// specific cause is only for operators.
	s.logger.Error().Err(err).Uint("block_id", blockID).Msg("grade fetch failed")
	return &GradeError{Message: MsgGenericFailure, Cause: err}
}

func (s *gradeService) sanitizeReasons(reasons []string) []string {
	sanitized := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		sanitized = append(sanitized, strings.TrimSpace(s.sanitizer.Sanitize(reason)))
	}
	return sanitized
}

func (s *gradeService) invalidateCache(ctx context.Context, blockID, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, latestGradeKey(blockID, userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate latest grade cache")
	}
}

func latestGradeKey(blockID, userID uint) string {
	return fmt.Sprintf("grade:latest:%d:%d", blockID, userID)
}

func graderConfig(block models.GraderBlock) grader.Config {
	return grader.Config{
		AuthenticationEndpoint:      block.AuthenticationEndpoint,
		ClientID:                    block.ClientID,
		ClientSecret:                block.ClientSecret,
		AuthenticationUsername:      block.AuthenticationUsername,
		AuthenticationPassword:      block.AuthenticationPassword,
		APIKey:                      block.APIKey,
		GraderEndpoint:              block.GraderEndpoint,
		HTTPMethod:                  block.HTTPMethod,
		UserIdentifier:              block.UserIdentifier,
		UserIdentifierParameter:     block.UserIdentifierParameter,
		ActivityIdentifier:          block.ActivityIdentifier,
		ActivityIdentifierParameter: block.ActivityIdentifierParameter,
		ExtraParams:                 block.ExtraParams,
	}
}

func upstreamOutcome(err error) string {
	switch {
	case errors.Is(err, grader.ErrGraderEndpointInvalid), errors.Is(err, grader.ErrAuthEndpointInvalid):
		return "invalid_url"
	case errors.Is(err, grader.ErrAuthExchangeFailed):
		return "auth_error"
	case errors.Is(err, grader.ErrGraderUnreachable):
		return "transport_error"
	default:
		return "upstream_error"
	}
}

func renderFragment(grade int, reasons []string) string {
	return fmt.Sprintf(
		`<span>You got <span class="grade">%d</span> score for this activity.<br />Explanation: <span class="reason">%s</span></span>`,
		grade,
		strings.Join(reasons, " "),
	)
}
