package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pos-backend/internal/model"
	"pos-backend/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- Fakes ---

// fakeStore is the shared in-memory state behind the repository fakes. The
// fake transaction manager snapshots and restores it so rollback behaves like
// the real thing.
type fakeStore struct {
	invoices []model.Invoice
	lines    []model.InvoiceItem
	items    map[uint]model.Item
	audits   []model.AuditLog

	nextInvoiceID uint

	failLineInsert bool
	failAudit      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:         make(map[uint]model.Item),
		nextInvoiceID: 1,
	}
}

func (s *fakeStore) snapshot() fakeStore {
	cp := fakeStore{
		invoices:       append([]model.Invoice(nil), s.invoices...),
		lines:          append([]model.InvoiceItem(nil), s.lines...),
		items:          make(map[uint]model.Item, len(s.items)),
		audits:         append([]model.AuditLog(nil), s.audits...),
		nextInvoiceID:  s.nextInvoiceID,
		failLineInsert: s.failLineInsert,
		failAudit:      s.failAudit,
	}
	for id, item := range s.items {
		cp.items[id] = item
	}
	return cp
}

func (s *fakeStore) restore(snap fakeStore) {
	s.invoices = snap.invoices
	s.lines = snap.lines
	s.items = snap.items
	s.audits = snap.audits
	s.nextInvoiceID = snap.nextInvoiceID
}

type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeInvoiceRepo struct {
	store *fakeStore
}

func (r *fakeInvoiceRepo) CreateHeader(_ context.Context, inv *model.Invoice) error {
	inv.ID = r.store.nextInvoiceID
	r.store.nextInvoiceID++
	r.store.invoices = append(r.store.invoices, *inv)
	return nil
}

func (r *fakeInvoiceRepo) UpdateHeader(_ context.Context, inv *model.Invoice) error {
	for i := range r.store.invoices {
		if r.store.invoices[i].ID == inv.ID {
			r.store.invoices[i] = *inv
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeInvoiceRepo) CreateItem(_ context.Context, line *model.InvoiceItem) error {
	if r.store.failLineInsert {
		return errors.New("insert failed")
	}
	line.ID = uint(len(r.store.lines) + 1)
	r.store.lines = append(r.store.lines, *line)
	return nil
}

func (r *fakeInvoiceRepo) DeleteItems(_ context.Context, invoiceID uint) error {
	kept := r.store.lines[:0]
	for _, line := range r.store.lines {
		if line.InvoiceID != invoiceID {
			kept = append(kept, line)
		}
	}
	r.store.lines = kept
	return nil
}

func (r *fakeInvoiceRepo) FindByIDWithItems(_ context.Context, id uint) (*model.Invoice, error) {
	for _, inv := range r.store.invoices {
		if inv.ID == id {
			found := inv
			for _, line := range r.store.lines {
				if line.InvoiceID == id {
					found.Items = append(found.Items, line)
				}
			}
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvoiceRepo) List(_ context.Context, _, _ int) ([]model.Invoice, int64, error) {
	return r.store.invoices, int64(len(r.store.invoices)), nil
}

type fakeItemRepo struct {
	store *fakeStore
}

func (r *fakeItemRepo) Create(_ context.Context, item *model.Item) error {
	r.store.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *model.Item) error {
	r.store.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uint) (*model.Item, error) {
	item, ok := r.store.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *fakeItemRepo) List(_ context.Context, _, _ int, _ string) ([]model.Item, int64, error) {
	return nil, 0, nil
}

func (r *fakeItemRepo) DecrementQty(_ context.Context, id uint, qty decimal.Decimal) error {
	item, ok := r.store.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Qty = decimal.Max(item.Qty.Sub(qty), decimal.Zero)
	r.store.items[id] = item
	return nil
}

func (r *fakeItemRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Item, error) {
	var items []model.Item
	for _, id := range ids {
		if item, ok := r.store.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

type fakeAuditRepo struct {
	store *fakeStore
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if r.store.failAudit {
		return errors.New("audit insert failed")
	}
	entry.ID = uint(len(r.store.audits) + 1)
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return r.store.audits, int64(len(r.store.audits)), nil
}

// fakeLedger signals each post through a channel so tests can wait for the
// async goroutine.
type fakeLedger struct {
	posted chan model.LedgerEntry
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{posted: make(chan model.LedgerEntry, 4)}
}

func (l *fakeLedger) Post(_ context.Context, invoiceID uint, cash, card decimal.Decimal, operator, cardInfo string) error {
	l.posted <- model.LedgerEntry{
		InvoiceID:    invoiceID,
		OperatorName: operator,
		CashAmount:   cash,
		CardAmount:   card,
		CardInfo:     cardInfo,
	}
	return nil
}

func (l *fakeLedger) ListEntries(_ context.Context, _ string, _, _ int) ([]LedgerEntryResponse, int64, error) {
	return nil, 0, nil
}

type stubResolver struct {
	id *uint
}

func (r *stubResolver) Resolve(_ context.Context, customerID *uint, _ string) *uint {
	if customerID != nil {
		return customerID
	}
	return r.id
}

// --- Harness ---

type invoiceFixture struct {
	store   *fakeStore
	ledger  *fakeLedger
	service InvoiceService
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	store := newFakeStore()
	ledger := newFakeLedger()
	svc := NewInvoiceService(
		&fakeInvoiceRepo{store: store},
		&fakeItemRepo{store: store},
		&fakeAuditRepo{store: store},
		&stubResolver{},
		ledger,
		&fakeTxManager{store: store},
		nil,
		zerolog.Nop(),
	)
	return &invoiceFixture{store: store, ledger: ledger, service: svc}
}

func (f *invoiceFixture) seedItem(id uint, name string, qty string) {
	f.store.items[id] = model.Item{
		ID:       id,
		ItemName: name,
		Qty:      decimal.RequireFromString(qty),
	}
}

func (f *invoiceFixture) waitForLedger(t *testing.T) model.LedgerEntry {
	t.Helper()
	select {
	case entry := <-f.ledger.posted:
		return entry
	case <-time.After(2 * time.Second):
		t.Fatal("ledger entry was never posted")
		return model.LedgerEntry{}
	}
}

func rawLine(itemID uint, qty, market, selling string) pricing.RawLine {
	q := decimal.RequireFromString(qty)
	m := decimal.RequireFromString(market)
	s := decimal.RequireFromString(selling)
	return pricing.RawLine{
		ItemID:       &itemID,
		Qty:          &q,
		MarketPrice:  &m,
		SellingPrice: &s,
	}
}

// --- Tests ---

func TestCreateInvoiceCommitsHeaderLinesStockAndAudit(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seedItem(1, "Widget", "10")
	f.seedItem(2, "Gadget", "5")

	result, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		InvoiceNo:   "INV-001",
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "2", "100", "90"), rawLine(2, "1", "50", "50")},
		CashPayment: decimal.RequireFromString("230"),
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if result.InvoiceID == 0 {
		t.Fatal("expected a non-zero invoice id")
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}

	if len(f.store.invoices) != 1 {
		t.Fatalf("expected 1 invoice header, got %d", len(f.store.invoices))
	}
	inv := f.store.invoices[0]
	// 2×90 + 1×50 = 230 selling, discount (100-90)×2 = 20.
	if got := inv.NetTotal.String(); got != "230" {
		t.Errorf("net total = %s, want 230", got)
	}
	if got := inv.TotalDiscount.String(); got != "20" {
		t.Errorf("total discount = %s, want 20", got)
	}
	if inv.OperatorName != "alice" {
		t.Errorf("operator = %q, want alice", inv.OperatorName)
	}
	if inv.Status != model.InvoiceStatusCompleted {
		t.Errorf("status = %q, want completed", inv.Status)
	}

	if len(f.store.lines) != 2 {
		t.Fatalf("expected 2 invoice lines, got %d", len(f.store.lines))
	}
	if got := f.store.items[1].Qty.String(); got != "8" {
		t.Errorf("item 1 qty = %s, want 8", got)
	}
	if got := f.store.items[2].Qty.String(); got != "4" {
		t.Errorf("item 2 qty = %s, want 4", got)
	}

	if len(result.UpdatedItems) != 2 {
		t.Fatalf("expected 2 updated item snapshots, got %d", len(result.UpdatedItems))
	}

	if len(f.store.audits) != 1 || f.store.audits[0].Action != model.ActionCreateInvoice {
		t.Fatalf("expected one create-invoice audit row, got %+v", f.store.audits)
	}

	entry := f.waitForLedger(t)
	if entry.InvoiceID != result.InvoiceID {
		t.Errorf("ledger invoice id = %d, want %d", entry.InvoiceID, result.InvoiceID)
	}
	if got := entry.CashAmount.String(); got != "230" {
		t.Errorf("ledger cash = %s, want 230", got)
	}
}

func TestCreateInvoiceRejectsInsufficientPayment(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seedItem(1, "Widget", "10")

	_, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "1", "100", "100")},
		CashPayment: decimal.RequireFromString("50"),
	})
	if !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("err = %v, want ErrInsufficientPayment", err)
	}

	if len(f.store.invoices) != 0 || len(f.store.lines) != 0 {
		t.Fatal("rejected invoice must not write anything")
	}
	if got := f.store.items[1].Qty.String(); got != "10" {
		t.Errorf("stock must be untouched, qty = %s", got)
	}
}

func TestCreateInvoiceDateGuards(t *testing.T) {
	f := newInvoiceFixture(t)

	tests := []struct {
		name string
		date string
		want error
	}{
		{"missing", "", ErrMissingDate},
		{"whitespace", "   ", ErrMissingDate},
		{"garbage", "not-a-date", ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
				Date:        tt.date,
				Items:       []pricing.RawLine{rawLine(1, "1", "10", "10")},
				CashPayment: decimal.RequireFromString("10"),
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateInvoiceRejectsEmptyCart(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		Date: "2025-03-01",
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCreateInvoiceMissingItemBecomesWarning(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seedItem(1, "Widget", "10")
	// Item 99 is on the invoice but not in the catalog.

	result, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		InvoiceNo:   "INV-002",
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "1", "100", "100"), rawLine(99, "1", "40", "40")},
		CashPayment: decimal.RequireFromString("140"),
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "item 99") {
		t.Fatalf("warnings = %v, want one mentioning item 99", result.Warnings)
	}
	// The sale itself still committed, both lines included.
	if len(f.store.invoices) != 1 || len(f.store.lines) != 2 {
		t.Fatalf("sale should commit despite the warning: %d headers, %d lines",
			len(f.store.invoices), len(f.store.lines))
	}
	// Only the existing item shows up in the refreshed snapshots.
	if len(result.UpdatedItems) != 1 || result.UpdatedItems[0].ID != 1 {
		t.Fatalf("updated items = %+v, want just item 1", result.UpdatedItems)
	}
}

func TestCreateInvoiceRollsBackEverythingOnLineFailure(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seedItem(1, "Widget", "10")
	f.store.failLineInsert = true

	_, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "2", "100", "100")},
		CashPayment: decimal.RequireFromString("200"),
	})
	if err == nil {
		t.Fatal("expected an error from the failed line insert")
	}

	if len(f.store.invoices) != 0 {
		t.Error("header must be rolled back with the failed line")
	}
	if got := f.store.items[1].Qty.String(); got != "10" {
		t.Errorf("stock must be rolled back, qty = %s", got)
	}
	if len(f.store.audits) != 0 {
		t.Error("no audit row may survive a rollback")
	}
}

func TestCreateInvoiceRollsBackOnAuditFailure(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seedItem(1, "Widget", "10")
	f.store.failAudit = true

	_, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "2", "100", "100")},
		CashPayment: decimal.RequireFromString("200"),
	})
	if err == nil {
		t.Fatal("expected an error from the failed audit write")
	}
	if len(f.store.invoices) != 0 || len(f.store.lines) != 0 {
		t.Fatal("nothing may survive a failed audit write")
	}
	if got := f.store.items[1].Qty.String(); got != "10" {
		t.Errorf("stock must be rolled back, qty = %s", got)
	}
}

func TestCreateInvoiceCardInfoZeroesDiscount(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seedItem(1, "Widget", "10")

	_, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "2", "100", "90")},
		CardPayment: decimal.RequireFromString("180"),
		CardInfo:    "VISA **** 4242",
	})
	if !errors.Is(err, ErrInsufficientPayment) {
		// With card info the discount is zeroed, so net is 2×100 = 200 and a
		// 180 payment no longer covers it.
		t.Fatalf("err = %v, want ErrInsufficientPayment once discount is zeroed", err)
	}

	_, err = f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "2", "100", "90")},
		CardPayment: decimal.RequireFromString("200"),
		CardInfo:    "VISA **** 4242",
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	inv := f.store.invoices[0]
	if got := inv.NetTotal.String(); got != "200" {
		t.Errorf("net total = %s, want 200", got)
	}
	if !inv.TotalDiscount.IsZero() {
		t.Errorf("total discount = %s, want 0", inv.TotalDiscount)
	}
}

func TestCreateInvoiceDraftStatusPreserved(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seedItem(1, "Widget", "10")

	_, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "1", "10", "10")},
		CashPayment: decimal.RequireFromString("10"),
		Status:      model.InvoiceStatusDraft,
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if got := f.store.invoices[0].Status; got != model.InvoiceStatusDraft {
		t.Errorf("status = %q, want draft", got)
	}
	// Draft or not, stock still moves on commit.
	if got := f.store.items[1].Qty.String(); got != "9" {
		t.Errorf("item qty = %s, want 9", got)
	}
}

func TestCreateInvoiceRequestUserNameWinsOverOperator(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seedItem(1, "Widget", "10")

	_, err := f.service.CreateInvoice(context.Background(), "token-operator", CreateInvoiceRequest{
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "1", "10", "10")},
		CashPayment: decimal.RequireFromString("10"),
		UserName:    "till-3",
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if got := f.store.invoices[0].OperatorName; got != "till-3" {
		t.Errorf("operator = %q, want till-3", got)
	}
}

func TestUpdateInvoiceReplacesLinesWithoutTouchingStockOrLedger(t *testing.T) {
	f := newInvoiceFixture(t)
	f.seedItem(1, "Widget", "10")
	f.seedItem(2, "Gadget", "5")

	created, err := f.service.CreateInvoice(context.Background(), "alice", CreateInvoiceRequest{
		InvoiceNo:   "INV-003",
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "2", "100", "100")},
		CashPayment: decimal.RequireFromString("200"),
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	f.waitForLedger(t)

	result, err := f.service.UpdateInvoice(context.Background(), "alice", created.InvoiceID, CreateInvoiceRequest{
		InvoiceNo:   "INV-003",
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(2, "3", "50", "50")},
		CashPayment: decimal.RequireFromString("150"),
	})
	if err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	if result.InvoiceID != created.InvoiceID {
		t.Errorf("update returned id %d, want %d", result.InvoiceID, created.InvoiceID)
	}
	if len(result.UpdatedItems) != 0 {
		t.Errorf("update must not report stock snapshots, got %+v", result.UpdatedItems)
	}

	// Old line gone, new line present.
	if len(f.store.lines) != 1 {
		t.Fatalf("expected 1 line after replace, got %d", len(f.store.lines))
	}
	if got := f.store.lines[0].ItemID; got == nil || *got != 2 {
		t.Fatalf("line item id = %v, want 2", got)
	}

	// Stock reflects only the original sale.
	if got := f.store.items[1].Qty.String(); got != "8" {
		t.Errorf("item 1 qty = %s, want 8 (unchanged by edit)", got)
	}
	if got := f.store.items[2].Qty.String(); got != "5" {
		t.Errorf("item 2 qty = %s, want 5 (edit never moves stock)", got)
	}

	// No second ledger entry.
	select {
	case entry := <-f.ledger.posted:
		t.Fatalf("edit must not post to the ledger, got %+v", entry)
	case <-time.After(100 * time.Millisecond):
	}

	// Header was updated in place.
	if got := f.store.invoices[0].NetTotal.String(); got != "150" {
		t.Errorf("net total after edit = %s, want 150", got)
	}
}

func TestUpdateInvoiceUnknownIDFails(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.service.UpdateInvoice(context.Background(), "alice", 42, CreateInvoiceRequest{
		Date:        "2025-03-01",
		Items:       []pricing.RawLine{rawLine(1, "1", "10", "10")},
		CashPayment: decimal.RequireFromString("10"),
	})
	if err == nil {
		t.Fatal("expected an error for an unknown invoice id")
	}
}

func TestCombineDateKeepsCallerDayAndServerClock(t *testing.T) {
	f := newInvoiceFixture(t)
	svc := f.service.(*invoiceService)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 14, 30, 45, 0, time.UTC)
	}

	got, err := svc.combineDate("2025-03-01")
	if err != nil {
		t.Fatalf("combineDate: %v", err)
	}
	want := time.Date(2025, 3, 1, 14, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("combineDate = %v, want %v", got, want)
	}
}
