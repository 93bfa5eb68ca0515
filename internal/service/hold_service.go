package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pos-backend/internal/model"
	"pos-backend/internal/pricing"
	"pos-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

// SaveHoldRequest parks an unfinished sale. Same line shape as an invoice,
// plus a free-text remark; no payment-cover guard applies because a hold is
// unfinished work by definition.
type SaveHoldRequest struct {
	InvoiceNo    string            `json:"invoiceNumber"`
	Date         string            `json:"date"`
	CustomerID   *uint             `json:"customerId"`
	CustomerName string            `json:"customerName"`
	Items        []pricing.RawLine `json:"items" binding:"required,min=1"`
	CashPayment  decimal.Decimal   `json:"cashPayment"`
	CardPayment  decimal.Decimal   `json:"cardPayment"`
	CardInfo     string            `json:"cardInfo"`
	UserName     string            `json:"userName"`
	Remark       string            `json:"remark"`
}

type HoldLineResponse struct {
	ItemID           *uint   `json:"item_id"`
	ItemBarcode      string  `json:"item_barcode,omitempty"`
	Quantity         string  `json:"quantity"`
	UnitCost         *string `json:"cost"`
	UnitMarketPrice  *string `json:"market_price"`
	UnitSellingPrice *string `json:"selling_price"`
	PerUnitDiscount  string  `json:"discount"`
	TotalValue       *string `json:"total_value"`
	Warranty         string  `json:"warranty,omitempty"`
	Other            string  `json:"other,omitempty"`
}

type HoldResponse struct {
	HoldID        string             `json:"holdId"`
	InvoiceNo     string             `json:"invoice_no,omitempty"`
	IssuedAt      string             `json:"issued_at,omitempty"`
	CustomerID    *uint              `json:"customer_id"`
	CustomerName  string             `json:"customer_name"`
	NetTotal      string             `json:"net_total"`
	TotalDiscount string             `json:"total_discount"`
	CashPayment   string             `json:"cash_payment"`
	CardPayment   string             `json:"card_payment"`
	CardInfo      string             `json:"card_info,omitempty"`
	OperatorName  string             `json:"operator_name"`
	Remark        string             `json:"remark,omitempty"`
	Items         []HoldLineResponse `json:"items"`
}

// --- Interface ---

// HoldService is the parallel, lower-stakes lifecycle for unfinished sales.
// Saving a hold never moves stock and never posts to the ledger; deleting a
// hold once its invoice commits is the caller's choreography, not enforced
// here.
type HoldService interface {
	Save(ctx context.Context, operator string, req SaveHoldRequest) (HoldResponse, error)
	Get(ctx context.Context, holdID string) (HoldResponse, error)
	List(ctx context.Context) ([]HoldResponse, error)
	Delete(ctx context.Context, operator, holdID string) error
}

type holdService struct {
	holdRepo  repository.HoldRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	now       func() time.Time
}

func NewHoldService(
	holdRepo repository.HoldRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) HoldService {
	return &holdService{
		holdRepo:  holdRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		now:       time.Now,
	}
}

// --- Implementation ---

func (s *holdService) Save(ctx context.Context, operator string, req SaveHoldRequest) (HoldResponse, error) {
	if len(req.Items) == 0 {
		return HoldResponse{}, ErrEmptyCart
	}

	lines, err := pricing.NormalizeAll(req.Items)
	if err != nil {
		return HoldResponse{}, err
	}
	agg := pricing.BuildAggregates(lines, req.CardInfo)

	operatorName := strings.TrimSpace(req.UserName)
	if operatorName == "" {
		operatorName = operator
	}

	issuedAt := s.now()
	if raw := strings.TrimSpace(req.Date); raw != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, parseErr := time.Parse(layout, raw); parseErr == nil {
				issuedAt = parsed
				break
			}
		}
	}

	hold := model.Hold{
		InvoiceNo:     req.InvoiceNo,
		IssuedAt:      issuedAt,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		NetTotal:      agg.NetTotal,
		TotalDiscount: agg.TotalDiscount,
		CashPayment:   req.CashPayment,
		CardPayment:   req.CardPayment,
		CardInfo:      req.CardInfo,
		OperatorName:  operatorName,
		Remark:        req.Remark,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.holdRepo.Create(txCtx, &hold); err != nil {
			return fmt.Errorf("failed to save hold: %w", err)
		}
		for i, line := range lines {
			item := toHoldItem(hold.ID, line)
			if err := s.holdRepo.CreateItem(txCtx, &item); err != nil {
				return fmt.Errorf("failed to save hold line %d: %w", i+1, err)
			}
			hold.Items = append(hold.Items, item)
		}
		entry := &model.AuditLog{
			OperatorName: operatorName,
			Action:       model.ActionSaveHold,
			EntityID:     hold.ID.String(),
			Details:      fmt.Sprintf(`{"lines": %d}`, len(lines)),
		}
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return HoldResponse{}, err
	}

	return toHoldResponse(hold), nil
}

func (s *holdService) Get(ctx context.Context, holdID string) (HoldResponse, error) {
	id, err := uuid.Parse(holdID)
	if err != nil {
		return HoldResponse{}, fmt.Errorf("invalid hold id: %w", err)
	}

	hold, err := s.holdRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		return HoldResponse{}, fmt.Errorf("hold not found: %w", err)
	}
	return toHoldResponse(*hold), nil
}

func (s *holdService) List(ctx context.Context) ([]HoldResponse, error) {
	holds, err := s.holdRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holds: %w", err)
	}

	result := make([]HoldResponse, 0, len(holds))
	for _, hold := range holds {
		result = append(result, toHoldResponse(hold))
	}
	return result, nil
}

func (s *holdService) Delete(ctx context.Context, operator, holdID string) error {
	id, err := uuid.Parse(holdID)
	if err != nil {
		return fmt.Errorf("invalid hold id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.holdRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete hold: %w", err)
		}
		entry := &model.AuditLog{
			OperatorName: operator,
			Action:       model.ActionDeleteHold,
			EntityID:     id.String(),
			Details:      `{"deleted": true}`,
		}
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

// --- Mapping ---

func toHoldItem(holdID uuid.UUID, line pricing.Line) model.HoldItem {
	return model.HoldItem{
		HoldID:           holdID,
		ItemID:           line.ItemID,
		ItemBarcode:      line.Barcode,
		Quantity:         line.Quantity,
		UnitCost:         line.UnitCost,
		UnitMarketPrice:  line.UnitMarketPrice,
		UnitSellingPrice: line.UnitSellingPrice,
		PerUnitDiscount:  line.PerUnitDiscount,
		TotalValue:       line.LineTotal,
		Warranty:         line.Warranty,
		Other:            line.Other,
	}
}

func toHoldResponse(hold model.Hold) HoldResponse {
	resp := HoldResponse{
		HoldID:        hold.ID.String(),
		InvoiceNo:     hold.InvoiceNo,
		IssuedAt:      hold.IssuedAt.Format(time.RFC3339),
		CustomerID:    hold.CustomerID,
		CustomerName:  hold.CustomerName,
		NetTotal:      hold.NetTotal.StringFixed(2),
		TotalDiscount: hold.TotalDiscount.StringFixed(2),
		CashPayment:   hold.CashPayment.StringFixed(2),
		CardPayment:   hold.CardPayment.StringFixed(2),
		CardInfo:      hold.CardInfo,
		OperatorName:  hold.OperatorName,
		Remark:        hold.Remark,
		Items:         make([]HoldLineResponse, 0, len(hold.Items)),
	}
	for _, line := range hold.Items {
		resp.Items = append(resp.Items, HoldLineResponse{
			ItemID:           line.ItemID,
			ItemBarcode:      line.ItemBarcode,
			Quantity:         line.Quantity.String(),
			UnitCost:         decimalString(line.UnitCost),
			UnitMarketPrice:  decimalString(line.UnitMarketPrice),
			UnitSellingPrice: decimalString(line.UnitSellingPrice),
			PerUnitDiscount:  line.PerUnitDiscount.StringFixed(2),
			TotalValue:       decimalString(line.TotalValue),
			Warranty:         line.Warranty,
			Other:            line.Other,
		})
	}
	return resp
}
