package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-backend/internal/model"
	"pos-backend/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// FallbackCustomerName is used when a sale names nobody at all.
const FallbackCustomerName = "Unknown"

// CustomerResolver turns an optional customer id and/or free-text name into a
// customer link. It never fails the sale: any lookup or creation error
// degrades to a nil link. Availability over strictness.
type CustomerResolver interface {
	Resolve(ctx context.Context, customerID *uint, customerName string) *uint
}

type customerResolver struct {
	customerRepo repository.CustomerRepository
	logger       zerolog.Logger
	now          func() time.Time
}

func NewCustomerResolver(customerRepo repository.CustomerRepository, logger zerolog.Logger) CustomerResolver {
	return &customerResolver{
		customerRepo: customerRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (r *customerResolver) Resolve(ctx context.Context, customerID *uint, customerName string) *uint {
	// A supplied id is trusted as-is; existence is the caller's problem.
	if customerID != nil {
		return customerID
	}

	name := strings.TrimSpace(customerName)
	if name == "" {
		name = FallbackCustomerName
	}

	existing, err := r.customerRepo.FindByNameOrCode(ctx, name)
	if err == nil {
		return &existing.ID
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn().Err(err).Str("customer", name).
			Msg("customer lookup failed, saving invoice without customer link")
		return nil
	}

	code := "UNKNOWN"
	if !strings.EqualFold(name, "unknown") {
		// Timestamp-derived code keeps ad-hoc customers distinguishable
		// without a sequence.
		code = fmt.Sprintf("C%d", r.now().UnixMilli())
	}

	customer := &model.Customer{Code: code, Name: name}
	if err := r.customerRepo.Create(ctx, customer); err != nil {
		r.logger.Warn().Err(err).Str("customer", name).
			Msg("customer creation failed, saving invoice without customer link")
		return nil
	}
	return &customer.ID
}
