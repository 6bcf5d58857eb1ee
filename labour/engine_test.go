package labour

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func testEngine(repo *fakeRepo, charges float64) (*Engine, *fakePool) {
	pool := &fakePool{}
	eng := NewEngine(pool, repo, &fakeCharges{total: charges}, &fakeEvents{}, &fakeOutbox{})
	eng.WithClock(func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) })
	return eng, pool
}

func assignedAssignment() Assignment {
	return Assignment{
		ID:           "asg-1",
		ShipmentID:   "shp-1",
		LabourerID:   "lab-1",
		Status:       StatusAssigned,
		AssignedDate: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestDeliver_SetsDeliveredDate(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, pool := testEngine(repo, 1000)

	a, err := eng.Deliver(context.Background(), "asg-1", nil)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if a.Status != StatusDelivered {
		t.Errorf("status = %s, want delivered", a.Status)
	}
	if a.DeliveredDate == nil {
		t.Fatalf("delivered date not set")
	}
	if !pool.tx.committed {
		t.Errorf("expected commit")
	}
}

func TestDeliver_Twice_InvalidTransition(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 1000)

	if _, err := eng.Deliver(context.Background(), "asg-1", nil); err != nil {
		t.Fatalf("first deliver: %v", err)
	}
	before := repo.a

	_, err := eng.Deliver(context.Background(), "asg-1", nil)
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if ite.Current != StatusDelivered || ite.Op != OpDeliver {
		t.Errorf("error = %+v", ite)
	}
	if repo.a != before {
		t.Errorf("record was mutated by rejected transition")
	}
}

func TestCollect_DerivesTotalExpenses(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 1000)

	mustDeliver(t, eng)
	a, err := eng.Collect(context.Background(), CollectParams{
		AssignmentID:    "asg-1",
		CollectedAmount: 1500,
		Expenses:        &Expenses{Station: 200, Bility: 50, StationLabour: 100, CartLabour: 150},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if a.Status != StatusCollected {
		t.Errorf("status = %s, want collected", a.Status)
	}
	if a.TotalExpenses != 500 {
		t.Errorf("total expenses = %.2f, want 500.00", a.TotalExpenses)
	}
	if a.CollectedAmount != 1500 {
		t.Errorf("collected = %.2f, want 1500.00", a.CollectedAmount)
	}
}

func TestCollect_RequiresExpenseBreakdown(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 1000)

	mustDeliver(t, eng)
	_, err := eng.Collect(context.Background(), CollectParams{AssignmentID: "asg-1", CollectedAmount: 1500})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCollect_NegativeAmount(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 1000)

	_, err := eng.Collect(context.Background(), CollectParams{AssignmentID: "asg-1", CollectedAmount: -1})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCollect_BeforeDelivery_InvalidTransition(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 1000)

	_, err := eng.Collect(context.Background(), CollectParams{
		AssignmentID:    "asg-1",
		CollectedAmount: 1500,
		Expenses:        &Expenses{},
	})
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

// Scenario: charges 1000.00, expenses (200, 50, 100, 150), exact collection.
func TestSettle_ExactCollection(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 1000)

	mustDeliver(t, eng)
	mustCollect(t, eng, 1500)

	a, err := eng.Settle(context.Background(), "asg-1", nil)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if a.Status != StatusSettled {
		t.Errorf("status = %s, want settled", a.Status)
	}
	if a.SettledDate == nil {
		t.Errorf("settled date not set")
	}
}

// Scenario: under-collection of 1400.00 against a 1500.00 total due.
func TestSettle_Underpaid_CorrectionProtocol(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 1000)

	mustDeliver(t, eng)
	mustCollect(t, eng, 1400)

	_, err := eng.Settle(context.Background(), "asg-1", nil)
	var pending *ReconciliationPendingError
	if !errors.As(err, &pending) {
		t.Fatalf("expected ReconciliationPendingError, got %v", err)
	}
	if pending.Remaining != 100 {
		t.Errorf("remaining = %.2f, want 100.00", pending.Remaining)
	}
	if pending.RequiredTotal != 1500 {
		t.Errorf("required total = %.2f, want 1500.00", pending.RequiredTotal)
	}
	if repo.a.Status != StatusCollected {
		t.Errorf("status = %s, want collected after refused settle", repo.a.Status)
	}

	// A correction that does not confirm the required total is rejected and
	// names the exact value.
	_, err = eng.Collect(context.Background(), CollectParams{AssignmentID: "asg-1", CollectedAmount: 1450})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.RequiredTotal == nil || *ve.RequiredTotal != 1500 {
		t.Errorf("validation required total = %v, want 1500.00", ve.RequiredTotal)
	}
	if len(repo.corrections) != 0 {
		t.Errorf("rejected correction must not be audited")
	}

	// Confirming the exact total records the correction and unblocks SETTLE.
	a, err := eng.Collect(context.Background(), CollectParams{AssignmentID: "asg-1", CollectedAmount: 1500})
	if err != nil {
		t.Fatalf("correction collect: %v", err)
	}
	if a.CollectedAmount != 1500 {
		t.Errorf("collected = %.2f, want 1500.00", a.CollectedAmount)
	}
	if a.TotalExpenses != 500 {
		t.Errorf("expenses must be preserved on correction, got %.2f", a.TotalExpenses)
	}
	if len(repo.corrections) != 1 {
		t.Fatalf("corrections = %d, want 1", len(repo.corrections))
	}
	if c := repo.corrections[0]; c.OldAmount != 1400 || c.NewAmount != 1500 {
		t.Errorf("correction = %+v", c)
	}

	if _, err := eng.Settle(context.Background(), "asg-1", nil); err != nil {
		t.Fatalf("settle after correction: %v", err)
	}
}

// Scenario: over-collection of 1600.00; the refund path runs through the same
// correction protocol.
func TestSettle_Overpaid_RefundOwed(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 1000)

	mustDeliver(t, eng)
	mustCollect(t, eng, 1600)

	_, err := eng.Settle(context.Background(), "asg-1", nil)
	var pending *ReconciliationPendingError
	if !errors.As(err, &pending) {
		t.Fatalf("expected ReconciliationPendingError, got %v", err)
	}
	if pending.Remaining != -100 {
		t.Errorf("remaining = %.2f, want -100.00", pending.Remaining)
	}

	if _, err := eng.Collect(context.Background(), CollectParams{AssignmentID: "asg-1", CollectedAmount: 1500}); err != nil {
		t.Fatalf("correction collect: %v", err)
	}
	if _, err := eng.Settle(context.Background(), "asg-1", nil); err != nil {
		t.Fatalf("settle after refund correction: %v", err)
	}
}

// Scenario: a no-charge shipment with no expenses. The required total is a
// legitimate 0.00 and a rejected correction must still carry it.
func TestCollect_CorrectionRejected_ZeroRequiredTotal(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 0)

	mustDeliver(t, eng)
	if _, err := eng.Collect(context.Background(), CollectParams{
		AssignmentID:    "asg-1",
		CollectedAmount: 50,
		Expenses:        &Expenses{},
	}); err != nil {
		t.Fatalf("collect: %v", err)
	}

	_, err := eng.Collect(context.Background(), CollectParams{AssignmentID: "asg-1", CollectedAmount: 10})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.RequiredTotal == nil {
		t.Fatalf("required total must be set even when it is 0.00")
	}
	if *ve.RequiredTotal != 0 {
		t.Errorf("required total = %.2f, want 0.00", *ve.RequiredTotal)
	}

	if _, err := eng.Collect(context.Background(), CollectParams{AssignmentID: "asg-1", CollectedAmount: 0}); err != nil {
		t.Fatalf("correction collect: %v", err)
	}
	if _, err := eng.Settle(context.Background(), "asg-1", nil); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

func TestSettle_WithinTolerance(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	eng, _ := testEngine(repo, 1000)

	mustDeliver(t, eng)
	mustCollect(t, eng, 1500.01)

	if _, err := eng.Settle(context.Background(), "asg-1", nil); err != nil {
		t.Fatalf("settle within tolerance: %v", err)
	}
}

func TestCancel_FromNonTerminal(t *testing.T) {
	for _, start := range []Status{StatusAssigned, StatusDelivered, StatusCollected} {
		repo := &fakeRepo{a: assignedAssignment()}
		repo.a.Status = start
		eng, _ := testEngine(repo, 1000)

		a, err := eng.Cancel(context.Background(), "asg-1", nil)
		if err != nil {
			t.Fatalf("cancel from %s: %v", start, err)
		}
		if a.Status != StatusCancelled {
			t.Errorf("status = %s, want cancelled", a.Status)
		}
	}
}

func TestCancel_OnSettled_InvalidTransition(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	repo.a.Status = StatusSettled
	eng, _ := testEngine(repo, 1000)

	_, err := eng.Cancel(context.Background(), "asg-1", nil)
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if repo.saved {
		t.Errorf("rejected cancel must not write")
	}
}

func TestTransitionAfterCancel_Rejected(t *testing.T) {
	repo := &fakeRepo{a: assignedAssignment()}
	repo.a.Status = StatusCancelled
	eng, _ := testEngine(repo, 1000)

	var ite *InvalidTransitionError
	if _, err := eng.Deliver(context.Background(), "asg-1", nil); !errors.As(err, &ite) {
		t.Errorf("deliver after cancel: got %v", err)
	}
	if _, err := eng.Settle(context.Background(), "asg-1", nil); !errors.As(err, &ite) {
		t.Errorf("settle after cancel: got %v", err)
	}
	if _, err := eng.Cancel(context.Background(), "asg-1", nil); !errors.As(err, &ite) {
		t.Errorf("cancel after cancel: got %v", err)
	}
}

func TestNotFoundPropagates(t *testing.T) {
	repo := &fakeRepo{loadErr: ErrNotFound}
	eng, pool := testEngine(repo, 1000)

	_, err := eng.Deliver(context.Background(), "missing", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if pool.tx.committed {
		t.Errorf("expected rollback on load failure")
	}
}

func mustDeliver(t *testing.T, eng *Engine) {
	t.Helper()
	if _, err := eng.Deliver(context.Background(), "asg-1", nil); err != nil {
		t.Fatalf("deliver: %v", err)
	}
}

func mustCollect(t *testing.T, eng *Engine, amount float64) {
	t.Helper()
	_, err := eng.Collect(context.Background(), CollectParams{
		AssignmentID:    "asg-1",
		CollectedAmount: amount,
		Expenses:        &Expenses{Station: 200, Bility: 50, StationLabour: 100, CartLabour: 150},
	})
	if err != nil {
		t.Fatalf("collect %.2f: %v", amount, err)
	}
}

type fakeRepo struct {
	a           Assignment
	loadErr     error
	saveErr     error
	saved       bool
	corrections []Correction
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Assignment, error) {
	if f.loadErr != nil {
		return Assignment{}, f.loadErr
	}
	return f.a, nil
}

func (f *fakeRepo) SaveTransition(ctx context.Context, tx pgx.Tx, a Assignment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.a = a
	f.saved = true
	return nil
}

func (f *fakeRepo) InsertCorrection(ctx context.Context, tx pgx.Tx, c Correction) error {
	f.corrections = append(f.corrections, c)
	return nil
}

type fakeCharges struct {
	total float64
	err   error
}

func (f *fakeCharges) TotalCharges(ctx context.Context, tx pgx.Tx, shipmentID string) (float64, error) {
	return f.total, f.err
}

type fakeEvents struct {
	types []string
}

func (f *fakeEvents) Append(ctx context.Context, tx pgx.Tx, assignmentID string, eventType string, payload map[string]any) error {
	f.types = append(f.types, eventType)
	return nil
}

type fakeOutbox struct {
	topics []string
}

func (f *fakeOutbox) Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error {
	f.topics = append(f.topics, topic)
	return nil
}

type fakePool struct {
	tx *fakeTx
}

func (f *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

type fakeTx struct {
	rolled    bool
	committed bool
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeTx does not support nested transactions")
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolled = true
	return nil
}

func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}

func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (f *fakeTx) LargeObjects() pgx.LargeObjects {
	panic("not implemented")
}

func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}

func (f *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}

func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not implemented")
}

func (f *fakeTx) Conn() *pgx.Conn {
	return nil
}
