package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gradefetcher-api/internal/models"
)

// BlockFilter narrows block listing queries.
type BlockFilter struct {
	CourseID *string
}

// BlockRepository defines data operations for authored grader blocks.
type BlockRepository interface {
	List(ctx context.Context, filter BlockFilter) ([]models.GraderBlock, error)
	GetByID(ctx context.Context, id uint) (models.GraderBlock, error)
	Create(ctx context.Context, block *models.GraderBlock) error
	Update(ctx context.Context, block *models.GraderBlock) error
	Delete(ctx context.Context, id uint) error
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository instantiates the repository.
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) List(ctx context.Context, filter BlockFilter) ([]models.GraderBlock, error) {
	query := r.db.WithContext(ctx).Model(&models.GraderBlock{})

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	var blocks []models.GraderBlock
	if err := query.Order("created_at DESC").Find(&blocks).Error; err != nil {
		return nil, err
	}

	return blocks, nil
}

func (r *blockRepository) GetByID(ctx context.Context, id uint) (models.GraderBlock, error) {
	var block models.GraderBlock
	if err := r.db.WithContext(ctx).First(&block, id).Error; err != nil {
		return models.GraderBlock{}, err
	}

	return block, nil
}

func (r *blockRepository) Create(ctx context.Context, block *models.GraderBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *blockRepository) Update(ctx context.Context, block *models.GraderBlock) error {
	return r.db.WithContext(ctx).Save(block).Error
}

func (r *blockRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.GraderBlock{}, id).Error
}
