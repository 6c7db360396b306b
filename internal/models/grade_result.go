package models

import (
	"encoding/json"
	"time"
)

// GradeResult is the latest grade fetched for one user on one block. Each
// successful fetch overwrites the previous row; no history is kept.
type GradeResult struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	BlockID    uint        `gorm:"not null;uniqueIndex:idx_block_user" json:"block_id"`
	UserID     uint        `gorm:"not null;uniqueIndex:idx_block_user" json:"user_id"`
	Grade      int         `gorm:"not null" json:"grade"`
	Reasons    string      `gorm:"type:text" json:"-"`
	HTMLFormat string      `gorm:"type:text" json:"html_format"`
	FetchedAt  time.Time   `json:"fetched_at"`
	Block      GraderBlock `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ReasonList decodes the stored reason strings, preserving grader order.
func (r GradeResult) ReasonList() []string {
	if r.Reasons == "" {
		return []string{}
	}
	var reasons []string
	if err := json.Unmarshal([]byte(r.Reasons), &reasons); err != nil {
		return []string{}
	}
	return reasons
}

// SetReasons stores the ordered reason strings as JSON text.
func (r *GradeResult) SetReasons(reasons []string) error {
	if reasons == nil {
		reasons = []string{}
	}
	encoded, err := json.Marshal(reasons)
	if err != nil {
		return err
	}
	r.Reasons = string(encoded)
	return nil
}
