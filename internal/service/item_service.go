package service

import (
	"context"
	"encoding/json"
	"fmt"

	"pos-backend/internal/model"
	"pos-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type CreateItemRequest struct {
	ItemName        string          `json:"item_name" binding:"required"`
	ItemBarcode     string          `json:"item_barcode"`
	Qty             decimal.Decimal `json:"qty"`
	QtyType         string          `json:"qty_type"`
	Warranty        string          `json:"warranty"`
	ItemDescription string          `json:"item_description"`
	Category        string          `json:"category"`
	Cost            decimal.Decimal `json:"cost"`
	MarketPrice     decimal.Decimal `json:"market_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	Other           string          `json:"other"`
}

type UpdateItemRequest struct {
	ItemName        *string          `json:"item_name"`
	ItemBarcode     *string          `json:"item_barcode"`
	Qty             *decimal.Decimal `json:"qty"`
	QtyType         *string          `json:"qty_type"`
	Warranty        *string          `json:"warranty"`
	ItemDescription *string          `json:"item_description"`
	Category        *string          `json:"category"`
	Cost            *decimal.Decimal `json:"cost"`
	MarketPrice     *decimal.Decimal `json:"market_price"`
	SellingPrice    *decimal.Decimal `json:"selling_price"`
	Other           *string          `json:"other"`
}

type ItemService interface {
	CreateItem(ctx context.Context, operator string, req CreateItemRequest) (*model.Item, error)
	UpdateItem(ctx context.Context, operator string, id uint, req UpdateItemRequest) (*model.Item, error)
	GetItem(ctx context.Context, id uint) (*model.Item, error)
	ListItems(ctx context.Context, page, limit int, search string) ([]model.Item, int64, error)
}

type itemService struct {
	itemRepo  repository.ItemRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewItemService(
	itemRepo repository.ItemRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ItemService {
	return &itemService{
		itemRepo:  itemRepo,
		auditRepo: auditRepo,
		txManager: txManager,
	}
}

func (s *itemService) CreateItem(ctx context.Context, operator string, req CreateItemRequest) (*model.Item, error) {
	item := &model.Item{
		ItemName:        req.ItemName,
		ItemBarcode:     req.ItemBarcode,
		Qty:             req.Qty,
		QtyType:         req.QtyType,
		Warranty:        req.Warranty,
		ItemDescription: req.ItemDescription,
		Category:        req.Category,
		Cost:            req.Cost,
		MarketPrice:     req.MarketPrice,
		SellingPrice:    req.SellingPrice,
		TotalCost:       req.Cost.Mul(req.Qty),
		UserName:        operator,
		Other:           req.Other,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Create(txCtx, item); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			OperatorName: operator,
			Action:       model.ActionCreateItem,
			EntityID:     fmt.Sprintf("%d", item.ID),
			Details:      itemAuditDetails(item),
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) UpdateItem(ctx context.Context, operator string, id uint, req UpdateItemRequest) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}

	if req.ItemName != nil {
		item.ItemName = *req.ItemName
	}
	if req.ItemBarcode != nil {
		item.ItemBarcode = *req.ItemBarcode
	}
	if req.Qty != nil {
		item.Qty = *req.Qty
	}
	if req.QtyType != nil {
		item.QtyType = *req.QtyType
	}
	if req.Warranty != nil {
		item.Warranty = *req.Warranty
	}
	if req.ItemDescription != nil {
		item.ItemDescription = *req.ItemDescription
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Cost != nil {
		item.Cost = *req.Cost
	}
	if req.MarketPrice != nil {
		item.MarketPrice = *req.MarketPrice
	}
	if req.SellingPrice != nil {
		item.SellingPrice = *req.SellingPrice
	}
	if req.Other != nil {
		item.Other = *req.Other
	}
	item.TotalCost = item.Cost.Mul(item.Qty)
	item.UserName = operator

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id uint) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}
	return item, nil
}

func (s *itemService) ListItems(ctx context.Context, page, limit int, search string) ([]model.Item, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	items, total, err := s.itemRepo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch items: %w", err)
	}
	return items, total, nil
}

func itemAuditDetails(item *model.Item) string {
	payload, err := json.Marshal(map[string]any{
		"item_name":    item.ItemName,
		"item_barcode": item.ItemBarcode,
		"qty":          item.Qty,
	})
	if err != nil {
		return "{}"
	}
	return string(payload)
}
