package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gradefetcher-api/internal/models"
)

// GradeResultRepository stores the latest fetched grade per (block, user).
type GradeResultRepository interface {
	GetByBlockAndUser(ctx context.Context, blockID, userID uint) (models.GradeResult, error)
	Upsert(ctx context.Context, result *models.GradeResult) error
}

type gradeResultRepository struct {
	db *gorm.DB
}

// NewGradeResultRepository instantiates the repository.
func NewGradeResultRepository(db *gorm.DB) GradeResultRepository {
	return &gradeResultRepository{db: db}
}

func (r *gradeResultRepository) GetByBlockAndUser(ctx context.Context, blockID, userID uint) (models.GradeResult, error) {
	var result models.GradeResult
	err := r.db.WithContext(ctx).
		Where("block_id = ? AND user_id = ?", blockID, userID).
		First(&result).Error
	if err != nil {
		return models.GradeResult{}, err
	}

	return result, nil
}

// Upsert overwrites the previous result for the same block and user; grade
// state is latest-wins and unversioned.
func (r *gradeResultRepository) Upsert(ctx context.Context, result *models.GradeResult) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"grade", "reasons", "html_format", "fetched_at"}),
	}).Create(result).Error
}
