package repository

import (
	"context"

	"pos-backend/internal/model"

	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uint) (*model.Customer, error)
	FindByNameOrCode(ctx context.Context, value string) (*model.Customer, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByNameOrCode matches exactly on display name or short code.
func (r *customerRepository) FindByNameOrCode(ctx context.Context, value string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).Where("name = ? OR code = ?", value, value).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
