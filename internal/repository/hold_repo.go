package repository

import (
	"context"

	"pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HoldRepository interface {
	Create(ctx context.Context, hold *model.Hold) error
	CreateItem(ctx context.Context, line *model.HoldItem) error
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Hold, error)
	List(ctx context.Context) ([]model.Hold, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type holdRepository struct {
	db *gorm.DB
}

func NewHoldRepository(db *gorm.DB) HoldRepository {
	return &holdRepository{db: db}
}

func (r *holdRepository) Create(ctx context.Context, hold *model.Hold) error {
	// Generated client-side so the line inserts that follow in the same
	// transaction can reference the id without a read-back.
	if hold.ID == uuid.Nil {
		hold.ID = uuid.New()
	}
	return GetDB(ctx, r.db).Omit("Items").Create(hold).Error
}

func (r *holdRepository) CreateItem(ctx context.Context, line *model.HoldItem) error {
	return GetDB(ctx, r.db).Create(line).Error
}

func (r *holdRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Hold, error) {
	var hold model.Hold
	if err := GetDB(ctx, r.db).Preload("Items").First(&hold, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &hold, nil
}

func (r *holdRepository) List(ctx context.Context) ([]model.Hold, error) {
	var holds []model.Hold
	if err := GetDB(ctx, r.db).Preload("Items").Order("created_at desc").Find(&holds).Error; err != nil {
		return nil, err
	}
	return holds, nil
}

func (r *holdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := GetDB(ctx, r.db).Where("hold_id = ?", id).Delete(&model.HoldItem{}).Error; err != nil {
		return err
	}
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Hold{}).Error
}
