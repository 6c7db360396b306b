package dto

import (
	"time"

	"github.com/noah-isme/gradefetcher-api/internal/models"
)

// GradeResponse is the learner-facing result of a grade fetch.
type GradeResponse struct {
	Grade      int      `json:"grade"`
	Reason     []string `json:"reason"`
	HTMLFormat string   `json:"htmlFormat"`
}

// GradeErrorResponse is the learner-facing failure envelope. The message key
// is always "message".
type GradeErrorResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	HTMLFormat string `json:"htmlFormat"`
}

// NewGradeErrorResponse builds the error envelope for a user-facing message.
func NewGradeErrorResponse(message string) GradeErrorResponse {
	return GradeErrorResponse{Status: "error", Message: message, HTMLFormat: ""}
}

// LatestGradeResponse is the read view of a persisted grade result.
type LatestGradeResponse struct {
	BlockID    uint      `json:"block_id"`
	Grade      int       `json:"grade"`
	Reason     []string  `json:"reason"`
	HTMLFormat string    `json:"htmlFormat"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// NewLatestGradeResponse converts a GradeResult model into its read DTO.
func NewLatestGradeResponse(model models.GradeResult) LatestGradeResponse {
	return LatestGradeResponse{
		BlockID:    model.BlockID,
		Grade:      model.Grade,
		Reason:     model.ReasonList(),
		HTMLFormat: model.HTMLFormat,
		FetchedAt:  model.FetchedAt,
	}
}

// GradeEvent is published to the grade channel after a successful fetch. The
// value is the fraction grade/100 against a maximum of 1.
type GradeEvent struct {
	BlockID   uint      `json:"block_id"`
	UserID    uint      `json:"user_id"`
	Value     float64   `json:"value"`
	MaxValue  float64   `json:"max_value"`
	EmittedAt time.Time `json:"emitted_at"`
}
