package service

import (
	"context"
	"errors"
	"testing"

	"pos-backend/internal/model"
	"pos-backend/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeHoldRepo struct {
	holds map[uuid.UUID]*model.Hold
}

func newFakeHoldRepo() *fakeHoldRepo {
	return &fakeHoldRepo{holds: make(map[uuid.UUID]*model.Hold)}
}

func (r *fakeHoldRepo) Create(_ context.Context, hold *model.Hold) error {
	hold.ID = uuid.New()
	cp := *hold
	r.holds[hold.ID] = &cp
	return nil
}

func (r *fakeHoldRepo) CreateItem(_ context.Context, line *model.HoldItem) error {
	hold, ok := r.holds[line.HoldID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	hold.Items = append(hold.Items, *line)
	return nil
}

func (r *fakeHoldRepo) FindByIDWithItems(_ context.Context, id uuid.UUID) (*model.Hold, error) {
	hold, ok := r.holds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *hold
	return &cp, nil
}

func (r *fakeHoldRepo) List(_ context.Context) ([]model.Hold, error) {
	var holds []model.Hold
	for _, hold := range r.holds {
		holds = append(holds, *hold)
	}
	return holds, nil
}

func (r *fakeHoldRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.holds, id)
	return nil
}

type noopTxManager struct{}

func (noopTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingAuditRepo struct {
	entries []model.AuditLog
}

func (r *recordingAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recordingAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func newHoldFixture() (*fakeHoldRepo, *recordingAuditRepo, HoldService) {
	holdRepo := newFakeHoldRepo()
	auditRepo := &recordingAuditRepo{}
	svc := NewHoldService(holdRepo, auditRepo, noopTxManager{})
	return holdRepo, auditRepo, svc
}

func TestSaveHoldStoresCartWithoutGuards(t *testing.T) {
	holdRepo, _, svc := newHoldFixture()

	// Deliberately underpaid: holds are unfinished sales, the payment cover
	// guard does not apply.
	resp, err := svc.Save(context.Background(), "alice", SaveHoldRequest{
		Items:       []pricing.RawLine{rawLine(1, "2", "100", "90")},
		CashPayment: decimal.RequireFromString("5"),
		Remark:      "customer went to the ATM",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	id, err := uuid.Parse(resp.HoldID)
	if err != nil {
		t.Fatalf("hold id %q is not a uuid: %v", resp.HoldID, err)
	}
	hold, ok := holdRepo.holds[id]
	if !ok {
		t.Fatal("hold was not stored")
	}
	if len(hold.Items) != 1 {
		t.Fatalf("expected 1 hold line, got %d", len(hold.Items))
	}
	if got := hold.NetTotal.String(); got != "180" {
		t.Errorf("net total = %s, want 180", got)
	}
	if hold.Remark != "customer went to the ATM" {
		t.Errorf("remark = %q", hold.Remark)
	}
	if hold.OperatorName != "alice" {
		t.Errorf("operator = %q, want alice", hold.OperatorName)
	}
	if resp.NetTotal != "180.00" {
		t.Errorf("response net total = %q, want 180.00", resp.NetTotal)
	}
}

func TestSaveHoldRejectsEmptyCart(t *testing.T) {
	_, _, svc := newHoldFixture()

	_, err := svc.Save(context.Background(), "alice", SaveHoldRequest{})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestSaveHoldRejectsBadLine(t *testing.T) {
	_, _, svc := newHoldFixture()

	qty := decimal.Zero
	_, err := svc.Save(context.Background(), "alice", SaveHoldRequest{
		Items: []pricing.RawLine{{Barcode: "123", Qty: &qty}},
	})
	if !errors.Is(err, pricing.ErrInvalidLine) {
		t.Fatalf("err = %v, want ErrInvalidLine", err)
	}
}

func TestGetHoldRoundTrip(t *testing.T) {
	_, _, svc := newHoldFixture()

	saved, err := svc.Save(context.Background(), "alice", SaveHoldRequest{
		Items: []pricing.RawLine{rawLine(1, "1", "50", "50")},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := svc.Get(context.Background(), saved.HoldID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HoldID != saved.HoldID {
		t.Errorf("Get returned id %q, want %q", got.HoldID, saved.HoldID)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got.Items))
	}
}

func TestGetHoldRejectsMalformedID(t *testing.T) {
	_, _, svc := newHoldFixture()

	if _, err := svc.Get(context.Background(), "not-a-uuid"); err == nil {
		t.Fatal("expected an error for a malformed hold id")
	}
}

func TestDeleteHoldRemovesAndAudits(t *testing.T) {
	holdRepo, auditRepo, svc := newHoldFixture()

	saved, err := svc.Save(context.Background(), "alice", SaveHoldRequest{
		Items: []pricing.RawLine{rawLine(1, "1", "50", "50")},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if len(auditRepo.entries) != 1 || auditRepo.entries[0].Action != model.ActionSaveHold {
		t.Fatalf("expected a save-hold audit row, got %+v", auditRepo.entries)
	}

	if err := svc.Delete(context.Background(), "alice", saved.HoldID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(holdRepo.holds) != 0 {
		t.Error("hold must be gone after delete")
	}
	if len(auditRepo.entries) != 2 || auditRepo.entries[1].Action != model.ActionDeleteHold {
		t.Fatalf("expected a delete-hold audit row, got %+v", auditRepo.entries)
	}
	if auditRepo.entries[1].EntityID != saved.HoldID {
		t.Errorf("audit entity = %q, want %q", auditRepo.entries[1].EntityID, saved.HoldID)
	}
}

func TestListHolds(t *testing.T) {
	_, _, svc := newHoldFixture()

	for i := 0; i < 3; i++ {
		if _, err := svc.Save(context.Background(), "alice", SaveHoldRequest{
			Items: []pricing.RawLine{rawLine(uint(i+1), "1", "10", "10")},
		}); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	holds, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(holds) != 3 {
		t.Fatalf("expected 3 holds, got %d", len(holds))
	}
}
