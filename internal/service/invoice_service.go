package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pos-backend/internal/model"
	"pos-backend/internal/pricing"
	"pos-backend/internal/repository"
	ws "pos-backend/internal/websocket"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

// CreateInvoiceRequest is the wire shape for saving a sale. Line items arrive
// duck-typed (see pricing.RawLine) and are normalized before anything else
// looks at them.
type CreateInvoiceRequest struct {
	InvoiceNo    string            `json:"invoiceNumber"`
	Date         string            `json:"date" binding:"required"`
	CustomerID   *uint             `json:"customerId"`
	CustomerName string            `json:"customerName"`
	Items        []pricing.RawLine `json:"items" binding:"required,min=1"`
	CashPayment  decimal.Decimal   `json:"cashPayment"`
	CardPayment  decimal.Decimal   `json:"cardPayment"`
	CardInfo     string            `json:"cardInfo"`
	UserName     string            `json:"userName"`
	Status       string            `json:"status" binding:"omitempty,oneof=draft completed"`
}

// InvoiceResult is what a successful save returns: the new id, the refreshed
// snapshots for every item whose stock moved, and any per-line stock warnings.
// Warnings mean the sale committed but some stock counts were not adjusted.
type InvoiceResult struct {
	InvoiceID    uint                 `json:"invoiceId"`
	UpdatedItems []model.ItemSnapshot `json:"updatedItems"`
	Warnings     []string             `json:"warnings,omitempty"`
}

type InvoiceLineResponse struct {
	ID               uint    `json:"id"`
	ItemID           *uint   `json:"item_id"`
	ItemBarcode      string  `json:"item_barcode,omitempty"`
	Quantity         string  `json:"quantity"`
	UnitCost         *string `json:"unit_cost"`
	UnitMarketPrice  *string `json:"unit_market_price"`
	UnitSellingPrice *string `json:"unit_selling_price"`
	PerUnitDiscount  string  `json:"per_unit_discount"`
	TotalValue       *string `json:"total_value"`
	Warranty         string  `json:"warranty,omitempty"`
	Other            string  `json:"other,omitempty"`
}

type InvoiceResponse struct {
	ID            uint                  `json:"id"`
	InvoiceNo     string                `json:"invoice_no"`
	IssuedAt      string                `json:"issued_at"`
	CustomerID    *uint                 `json:"customer_id"`
	CustomerName  string                `json:"customer_name"`
	NetTotal      string                `json:"net_total"`
	TotalDiscount string                `json:"total_discount"`
	TotalCost     string                `json:"total_cost"`
	TotalProfit   string                `json:"total_profit"`
	CashPayment   string                `json:"cash_payment"`
	CardPayment   string                `json:"card_payment"`
	CardInfo      string                `json:"card_info,omitempty"`
	OperatorName  string                `json:"operator_name"`
	Status        string                `json:"status"`
	Items         []InvoiceLineResponse `json:"items,omitempty"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, operator string, req CreateInvoiceRequest) (InvoiceResult, error)
	UpdateInvoice(ctx context.Context, operator string, id uint, req CreateInvoiceRequest) (InvoiceResult, error)
	GetInvoice(ctx context.Context, id uint) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, page, limit int) ([]InvoiceResponse, int64, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	itemRepo    repository.ItemRepository
	auditRepo   repository.AuditRepository
	resolver    CustomerResolver
	ledger      LedgerService
	txManager   repository.TransactionManager
	hub         *ws.Hub
	logger      zerolog.Logger
	now         func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.ItemRepository,
	auditRepo repository.AuditRepository,
	resolver CustomerResolver,
	ledger LedgerService,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	logger zerolog.Logger,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		auditRepo:   auditRepo,
		resolver:    resolver,
		ledger:      ledger,
		txManager:   txManager,
		hub:         hub,
		logger:      logger,
		now:         time.Now,
	}
}

// --- Implementation ---

// CreateInvoice commits one sale: header, lines, per-line stock decrements and
// an audit row inside a single transaction, then snapshot refresh, ledger post
// and stock broadcast once the transaction has committed. Either the whole
// invoice exists afterwards or none of it does.
func (s *invoiceService) CreateInvoice(ctx context.Context, operator string, req CreateInvoiceRequest) (InvoiceResult, error) {
	inv, lines, agg, err := s.validate(req, operator)
	if err != nil {
		return InvoiceResult{}, err
	}

	// Customer resolution happens before the transaction so a failed
	// placeholder insert cannot poison it; the sale proceeds with a nil
	// customer link either way.
	inv.CustomerID = s.resolver.Resolve(ctx, req.CustomerID, req.CustomerName)

	var warnings []string
	var adjusted []uint
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.CreateHeader(txCtx, &inv); err != nil {
			return fmt.Errorf("failed to insert invoice header: %w", err)
		}

		warnings, adjusted, err = s.insertLines(txCtx, inv.ID, lines)
		if err != nil {
			return err
		}

		return s.audit(txCtx, inv.OperatorName, model.ActionCreateInvoice, inv.ID, map[string]interface{}{
			"invoice_no": inv.InvoiceNo,
			"net_total":  agg.NetTotal,
			"lines":      len(lines),
			"status":     inv.Status,
		})
	})
	if err != nil {
		return InvoiceResult{}, err
	}

	snapshots := s.refreshSnapshots(ctx, adjusted)
	s.postLedgerAsync(ctx, inv, agg)
	s.broadcastStock(snapshots)

	return InvoiceResult{
		InvoiceID:    inv.ID,
		UpdatedItems: snapshots,
		Warnings:     warnings,
	}, nil
}

// UpdateInvoice replaces the header and lines of an existing invoice in one
// transaction. It never appends, never moves stock and never posts to the
// ledger: the original commit already did both, and re-processing a sale must
// not double-count either.
func (s *invoiceService) UpdateInvoice(ctx context.Context, operator string, id uint, req CreateInvoiceRequest) (InvoiceResult, error) {
	existing, err := s.invoiceRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		return InvoiceResult{}, fmt.Errorf("invoice not found: %w", err)
	}

	inv, lines, agg, err := s.validate(req, operator)
	if err != nil {
		return InvoiceResult{}, err
	}
	inv.ID = existing.ID
	inv.CreatedAt = existing.CreatedAt
	inv.CustomerID = s.resolver.Resolve(ctx, req.CustomerID, req.CustomerName)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.UpdateHeader(txCtx, &inv); err != nil {
			return fmt.Errorf("failed to update invoice header: %w", err)
		}
		if err := s.invoiceRepo.DeleteItems(txCtx, inv.ID); err != nil {
			return fmt.Errorf("failed to clear invoice lines: %w", err)
		}
		for i, line := range lines {
			item := toInvoiceItem(inv.ID, line)
			if err := s.invoiceRepo.CreateItem(txCtx, &item); err != nil {
				return fmt.Errorf("failed to insert invoice line %d: %w", i+1, err)
			}
		}

		return s.audit(txCtx, inv.OperatorName, model.ActionUpdateInvoice, inv.ID, map[string]interface{}{
			"invoice_no": inv.InvoiceNo,
			"net_total":  agg.NetTotal,
			"lines":      len(lines),
		})
	})
	if err != nil {
		return InvoiceResult{}, err
	}

	return InvoiceResult{InvoiceID: inv.ID}, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id uint) (InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", err)
	}
	return toInvoiceResponse(*inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, page, limit int) ([]InvoiceResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	invoices, total, err := s.invoiceRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

// --- Steps ---

// validate runs the entry guards and builds the header from the request.
// Nothing is written yet; every rejection here is fully recoverable.
func (s *invoiceService) validate(req CreateInvoiceRequest, operator string) (model.Invoice, []pricing.Line, pricing.Aggregates, error) {
	issuedAt, err := s.combineDate(req.Date)
	if err != nil {
		return model.Invoice{}, nil, pricing.Aggregates{}, err
	}

	if len(req.Items) == 0 {
		return model.Invoice{}, nil, pricing.Aggregates{}, ErrEmptyCart
	}

	lines, err := pricing.NormalizeAll(req.Items)
	if err != nil {
		return model.Invoice{}, nil, pricing.Aggregates{}, err
	}

	agg := pricing.BuildAggregates(lines, req.CardInfo)
	if !pricing.Covers(req.CashPayment, req.CardPayment, agg.NetTotal) {
		return model.Invoice{}, nil, pricing.Aggregates{}, fmt.Errorf(
			"%w: paid %s, net total %s",
			ErrInsufficientPayment,
			req.CashPayment.Add(req.CardPayment), agg.NetTotal,
		)
	}

	operatorName := strings.TrimSpace(req.UserName)
	if operatorName == "" {
		operatorName = operator
	}

	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		customerName = FallbackCustomerName
	}

	status := req.Status
	if status == "" {
		status = model.InvoiceStatusCompleted
	}

	return model.Invoice{
		InvoiceNo:     req.InvoiceNo,
		IssuedAt:      issuedAt,
		CustomerName:  customerName,
		NetTotal:      agg.NetTotal,
		TotalDiscount: agg.TotalDiscount,
		TotalCost:     agg.TotalCost,
		TotalProfit:   agg.Profit,
		CashPayment:   req.CashPayment,
		CardPayment:   req.CardPayment,
		CardInfo:      req.CardInfo,
		OperatorName:  operatorName,
		Status:        status,
	}, lines, agg, nil
}

// insertLines writes every line and decrements stock for lines that resolve
// to a catalog item. A line insert failure aborts the transaction; a missing
// item row only produces a warning; the sale is worth more than a perfectly
// synced stock count.
func (s *invoiceService) insertLines(txCtx context.Context, invoiceID uint, lines []pricing.Line) ([]string, []uint, error) {
	var warnings []string
	var adjusted []uint
	seen := make(map[uint]bool)

	for i, line := range lines {
		item := toInvoiceItem(invoiceID, line)
		if err := s.invoiceRepo.CreateItem(txCtx, &item); err != nil {
			return nil, nil, fmt.Errorf("failed to insert invoice line %d: %w", i+1, err)
		}

		if line.ItemID == nil {
			continue
		}
		if err := s.itemRepo.DecrementQty(txCtx, *line.ItemID, line.Quantity); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				msg := fmt.Sprintf("stock not adjusted for item %d: item not found", *line.ItemID)
				warnings = append(warnings, msg)
				s.logger.Warn().Uint("item_id", *line.ItemID).Uint("invoice_id", invoiceID).
					Msg("stock adjustment skipped: item not found")
				continue
			}
			return nil, nil, fmt.Errorf("stock adjustment failed for item %d: %w", *line.ItemID, err)
		}
		if !seen[*line.ItemID] {
			seen[*line.ItemID] = true
			adjusted = append(adjusted, *line.ItemID)
		}
	}

	return warnings, adjusted, nil
}

func (s *invoiceService) audit(txCtx context.Context, operator, action string, entityID uint, payload map[string]interface{}) error {
	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		OperatorName: operator,
		Action:       action,
		EntityID:     strconv.FormatUint(uint64(entityID), 10),
		Details:      string(details),
	}
	if err := s.auditRepo.Log(txCtx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// refreshSnapshots reads the authoritative post-adjustment state for every
// item whose decrement committed. Read-only, so it runs outside the original
// transaction.
func (s *invoiceService) refreshSnapshots(ctx context.Context, adjusted []uint) []model.ItemSnapshot {
	snapshots := make([]model.ItemSnapshot, 0, len(adjusted))
	if len(adjusted) == 0 {
		return snapshots
	}

	items, err := s.itemRepo.FindByIDs(ctx, adjusted)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to refresh item snapshots after commit")
		return snapshots
	}
	for _, item := range items {
		snapshots = append(snapshots, item.Snapshot())
	}
	return snapshots
}

// postLedgerAsync records the realized payment split. The invoice is already
// committed; a failed posting is logged and swallowed.
func (s *invoiceService) postLedgerAsync(ctx context.Context, inv model.Invoice, agg pricing.Aggregates) {
	cashApplied := pricing.AppliedCash(inv.CashPayment, inv.CardPayment, agg.NetTotal)
	postCtx := context.WithoutCancel(ctx)

	go func() {
		pctx, cancel := context.WithTimeout(postCtx, 10*time.Second)
		defer cancel()
		if err := s.ledger.Post(pctx, inv.ID, cashApplied, inv.CardPayment, inv.OperatorName, inv.CardInfo); err != nil {
			s.logger.Error().Err(err).Uint("invoice_id", inv.ID).Msg("ledger post failed")
		}
	}()
}

func (s *invoiceService) broadcastStock(snapshots []model.ItemSnapshot) {
	if s.hub == nil || len(snapshots) == 0 {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event": "stock.updated",
		"data":  snapshots,
	})
	if err != nil {
		return
	}
	s.hub.Broadcast <- payload
}

// combineDate keeps the caller-chosen calendar date but stamps it with the
// server's current clock time.
func (s *invoiceService) combineDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrMissingDate
	}

	var day time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if day, err = time.Parse(layout, raw); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}

	now := s.now()
	return time.Date(day.Year(), day.Month(), day.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, now.Location()), nil
}

// --- Mapping ---

func toInvoiceItem(invoiceID uint, line pricing.Line) model.InvoiceItem {
	return model.InvoiceItem{
		InvoiceID:        invoiceID,
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

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID,
		InvoiceNo:     inv.InvoiceNo,
		IssuedAt:      inv.IssuedAt.Format(time.RFC3339),
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		NetTotal:      inv.NetTotal.StringFixed(2),
		TotalDiscount: inv.TotalDiscount.StringFixed(2),
		TotalCost:     inv.TotalCost.StringFixed(2),
		TotalProfit:   inv.TotalProfit.StringFixed(2),
		CashPayment:   inv.CashPayment.StringFixed(2),
		CardPayment:   inv.CardPayment.StringFixed(2),
		CardInfo:      inv.CardInfo,
		OperatorName:  inv.OperatorName,
		Status:        inv.Status,
	}
	for _, line := range inv.Items {
		resp.Items = append(resp.Items, toLineResponse(line))
	}
	return resp
}

func toLineResponse(line model.InvoiceItem) InvoiceLineResponse {
	return InvoiceLineResponse{
		ID:               line.ID,
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
	}
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
