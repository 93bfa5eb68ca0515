package service

import (
	"context"
	"fmt"
	"time"

	"pos-backend/internal/model"
	"pos-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type LedgerEntryResponse struct {
	ID           uint   `json:"id"`
	InvoiceID    uint   `json:"invoice_id"`
	OperatorName string `json:"operator_name"`
	CashAmount   string `json:"cash_amount"`
	CardAmount   string `json:"card_amount"`
	CardInfo     string `json:"card_info,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// LedgerService posts the realized cash/card split of a committed invoice.
// Posting happens after the invoice transaction has committed; a failed post
// is logged by the caller and never affects the sale.
type LedgerService interface {
	Post(ctx context.Context, invoiceID uint, cashApplied, cardApplied decimal.Decimal, operator, cardInfo string) error
	ListEntries(ctx context.Context, operator string, page, limit int) ([]LedgerEntryResponse, int64, error)
}

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
}

func NewLedgerService(ledgerRepo repository.LedgerRepository) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

func (s *ledgerService) Post(ctx context.Context, invoiceID uint, cashApplied, cardApplied decimal.Decimal, operator, cardInfo string) error {
	entry := &model.LedgerEntry{
		InvoiceID:    invoiceID,
		OperatorName: operator,
		CashAmount:   cashApplied,
		CardAmount:   cardApplied,
		CardInfo:     cardInfo,
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to post ledger entry for invoice %d: %w", invoiceID, err)
	}
	return nil
}

func (s *ledgerService) ListEntries(ctx context.Context, operator string, page, limit int) ([]LedgerEntryResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	entries, total, err := s.ledgerRepo.List(ctx, operator, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ledger entries: %w", err)
	}

	result := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, LedgerEntryResponse{
			ID:           e.ID,
			InvoiceID:    e.InvoiceID,
			OperatorName: e.OperatorName,
			CashAmount:   e.CashAmount.StringFixed(2),
			CardAmount:   e.CardAmount.StringFixed(2),
			CardInfo:     e.CardInfo,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}
