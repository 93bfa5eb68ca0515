package repository

import (
	"context"

	"pos-backend/internal/model"

	"gorm.io/gorm"
)

type InvoiceRepository interface {
	CreateHeader(ctx context.Context, inv *model.Invoice) error
	UpdateHeader(ctx context.Context, inv *model.Invoice) error
	CreateItem(ctx context.Context, line *model.InvoiceItem) error
	DeleteItems(ctx context.Context, invoiceID uint) error
	FindByIDWithItems(ctx context.Context, id uint) (*model.Invoice, error)
	List(ctx context.Context, page, limit int) ([]model.Invoice, int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
	// Older deployments migrated the header table before the denormalized
	// customer_name column existed. Probed once at startup; selects the
	// insert column set instead of retrying on a schema error.
	hasCustomerName bool
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{
		db:              db,
		hasCustomerName: db.Migrator().HasColumn(&model.Invoice{}, "customer_name"),
	}
}

func (r *invoiceRepository) CreateHeader(ctx context.Context, inv *model.Invoice) error {
	// Lines are inserted one by one by the coordinator, never as an
	// association write.
	omitted := []string{"Items", "Customer"}
	if !r.hasCustomerName {
		omitted = append(omitted, "CustomerName")
	}
	return GetDB(ctx, r.db).Omit(omitted...).Create(inv).Error
}

func (r *invoiceRepository) UpdateHeader(ctx context.Context, inv *model.Invoice) error {
	omitted := []string{"Items", "Customer", "CreatedAt"}
	if !r.hasCustomerName {
		omitted = append(omitted, "CustomerName")
	}
	return GetDB(ctx, r.db).Omit(omitted...).Save(inv).Error
}

func (r *invoiceRepository) CreateItem(ctx context.Context, line *model.InvoiceItem) error {
	return GetDB(ctx, r.db).Create(line).Error
}

func (r *invoiceRepository) DeleteItems(ctx context.Context, invoiceID uint) error {
	return GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).Delete(&model.InvoiceItem{}).Error
}

func (r *invoiceRepository) FindByIDWithItems(ctx context.Context, id uint) (*model.Invoice, error) {
	var inv model.Invoice
	if err := GetDB(ctx, r.db).Preload("Items").First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, page, limit int) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Invoice{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("issued_at desc").Offset(offset).Limit(limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}
