package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/selection"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

type statusChange struct {
	id int64
	to task.Status
}

type fakeService struct {
	tasks       []task.Task
	listErr     error
	updateErr   error
	bulkErr     error
	listCalls   int
	reviewCalls int
	updates     []statusChange
	bulks       [][]int64
}

func (f *fakeService) ListTasks(ctx context.Context, _ task.Filters) ([]task.Task, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}

func (f *fakeService) ListReviewQueue(ctx context.Context, _ task.Filters) ([]task.Task, error) {
	f.reviewCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}

func (f *fakeService) UpdateTaskStatus(ctx context.Context, id int64, s task.Status) (task.Task, error) {
	f.updates = append(f.updates, statusChange{id, s})
	if f.updateErr != nil {
		return task.Task{}, f.updateErr
	}
	return task.Task{ID: id, Status: s}, nil
}

func (f *fakeService) BulkUpdateStatus(ctx context.Context, ids []int64, s task.Status) (int, error) {
	f.bulks = append(f.bulks, ids)
	if f.bulkErr != nil {
		return 0, f.bulkErr
	}
	return len(ids), nil
}

func (f *fakeService) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	return task.Task{ID: 999, Name: d.Name}, nil
}

func (f *fakeService) ListPeriods(ctx context.Context) ([]task.Period, error) {
	return nil, nil
}

func newEngine(svc *fakeService) (*Engine, *selection.Set) {
	sel := selection.NewSet()
	return New(svc, sel), sel
}

func run(t *testing.T, op Op) error {
	t.Helper()
	if op == nil {
		t.Fatal("staged op is nil")
	}
	return op(context.Background())
}

func TestTransitionPendingLifecycle(t *testing.T) {
	svc := &fakeService{}
	e, _ := newEngine(svc)

	op, err := e.RequestTransition(7, task.StatusComplete)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if !e.Pending(7) {
		t.Fatal("pending mark should be set before the op runs")
	}
	if len(svc.updates) != 0 {
		t.Fatal("staging must not touch the network")
	}

	if err := run(t, op); err != nil {
		t.Fatalf("op: %v", err)
	}
	if e.Pending(7) {
		t.Error("pending mark should clear on settlement")
	}
	if !e.Stale() {
		t.Error("settlement should invalidate the cache")
	}
	if len(svc.updates) != 1 || svc.updates[0] != (statusChange{7, task.StatusComplete}) {
		t.Errorf("updates = %+v", svc.updates)
	}
}

func TestTransitionFailureStillSettles(t *testing.T) {
	svc := &fakeService{updateErr: errors.New("boom")}
	e, _ := newEngine(svc)

	op, err := e.RequestTransition(7, task.StatusComplete)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := run(t, op); err == nil {
		t.Fatal("expected op error")
	}
	if e.Pending(7) {
		t.Error("a failed transition must not leave the task stuck pending")
	}
	if !e.Stale() {
		t.Error("failure should still invalidate the cache")
	}
}

func TestSecondTransitionRejectedWhilePending(t *testing.T) {
	svc := &fakeService{}
	e, _ := newEngine(svc)

	op, err := e.RequestTransition(7, task.StatusReview)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := e.RequestTransition(7, task.StatusComplete); !errors.Is(err, ErrTransitionPending) {
		t.Fatalf("expected ErrTransitionPending, got %v", err)
	}

	// A different task is unaffected.
	if _, err := e.RequestTransition(8, task.StatusComplete); err != nil {
		t.Errorf("other task should stage fine: %v", err)
	}

	if err := run(t, op); err != nil {
		t.Fatalf("op: %v", err)
	}
	if _, err := e.RequestTransition(7, task.StatusComplete); err != nil {
		t.Errorf("after settlement staging should succeed again: %v", err)
	}
}

func TestSameStatusTransitionStillIssued(t *testing.T) {
	svc := &fakeService{}
	e, _ := newEngine(svc)
	e.replace([]task.Task{{ID: 1, Status: task.StatusReview}})

	op, err := e.RequestTransition(1, task.StatusReview)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := run(t, op); err != nil {
		t.Fatalf("op: %v", err)
	}
	if len(svc.updates) != 1 {
		t.Error("engine should not suppress same-status requests itself")
	}
}

func TestBulkEmptyStagesNothing(t *testing.T) {
	svc := &fakeService{}
	e, sel := newEngine(svc)
	sel.Toggle(1)

	op, err := e.RequestBulkTransition(nil, task.StatusComplete)
	if !errors.Is(err, ErrEmptyBulk) {
		t.Fatalf("expected ErrEmptyBulk, got %v", err)
	}
	if op != nil {
		t.Error("no op should be staged for an empty batch")
	}
	if len(svc.bulks) != 0 {
		t.Error("empty batch must not touch the network")
	}
	if sel.Len() != 1 {
		t.Error("empty batch must leave the selection unchanged")
	}
}

func TestBulkSingleFlight(t *testing.T) {
	svc := &fakeService{}
	e, _ := newEngine(svc)

	op, err := e.RequestBulkTransition([]int64{1, 2}, task.StatusComplete)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := e.RequestBulkTransition([]int64{3}, task.StatusComplete); !errors.Is(err, ErrBulkPending) {
		t.Fatalf("expected ErrBulkPending, got %v", err)
	}

	if err := run(t, op); err != nil {
		t.Fatalf("op: %v", err)
	}
	if _, err := e.RequestBulkTransition([]int64{3}, task.StatusComplete); err != nil {
		t.Errorf("after settlement a new bulk should stage: %v", err)
	}
}

func TestBulkSuccessClearsSelection(t *testing.T) {
	svc := &fakeService{}
	e, sel := newEngine(svc)
	sel.Toggle(1)
	sel.Toggle(2)

	op, err := e.RequestBulkTransition(sel.IDs(), task.StatusComplete)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := run(t, op); err != nil {
		t.Fatalf("op: %v", err)
	}
	if sel.Len() != 0 {
		t.Error("successful bulk should clear the selection")
	}
	if !e.Stale() {
		t.Error("successful bulk should invalidate the cache")
	}
}

func TestBulkFailureKeepsSelection(t *testing.T) {
	svc := &fakeService{bulkErr: errors.New("rejected")}
	e, sel := newEngine(svc)
	sel.Toggle(1)
	sel.Toggle(2)

	op, err := e.RequestBulkTransition(sel.IDs(), task.StatusComplete)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := run(t, op); err == nil {
		t.Fatal("expected op error")
	}
	if sel.Len() != 2 {
		t.Error("failed bulk should keep the selection for retry")
	}
	if !e.Stale() {
		t.Error("failed bulk should still invalidate the cache")
	}
	if e.BulkInFlight() {
		t.Error("failure must release the bulk slot")
	}
}

func TestDragSnapshotAndCanDrop(t *testing.T) {
	svc := &fakeService{}
	e, _ := newEngine(svc)
	e.replace([]task.Task{{ID: 1, Status: task.StatusReview}})

	d, err := e.StartDrag(1)
	if err != nil {
		t.Fatalf("start drag: %v", err)
	}
	if d.Status != task.StatusReview {
		t.Fatalf("carried status = %q, want review", d.Status)
	}
	if d.CanDrop(task.StatusReview) {
		t.Error("drop onto the carried status must be rejected")
	}
	if !d.CanDrop(task.StatusComplete) {
		t.Error("drop onto a different status must be accepted")
	}

	if _, err := e.StartDrag(99); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestDropRewritesCarriedStatusImmediately(t *testing.T) {
	svc := &fakeService{}
	e, _ := newEngine(svc)
	e.replace([]task.Task{{ID: 1, Status: task.StatusReview}})

	d, err := e.StartDrag(1)
	if err != nil {
		t.Fatalf("start drag: %v", err)
	}
	op, err := e.Drop(d, task.StatusComplete)
	if err != nil {
		t.Fatalf("drop: %v", err)
	}

	// The gesture now carries complete, so a second drop there is rejected
	// before the first has settled.
	if d.CanDrop(task.StatusComplete) {
		t.Error("second drop onto the same column should be rejected")
	}
	if _, err := e.Drop(d, task.StatusComplete); !errors.Is(err, ErrSameStatus) {
		t.Errorf("expected ErrSameStatus, got %v", err)
	}

	// The cached card moved optimistically and is marked pending.
	if got, _ := e.Get(1); got.Status != task.StatusComplete {
		t.Errorf("cached status = %q, want complete", got.Status)
	}
	if !e.Pending(1) {
		t.Error("dropped card should be pending")
	}

	if err := run(t, op); err != nil {
		t.Fatalf("op: %v", err)
	}
	if len(svc.updates) != 1 || svc.updates[0] != (statusChange{1, task.StatusComplete}) {
		t.Errorf("updates = %+v", svc.updates)
	}
}

func TestDropWhilePendingRejected(t *testing.T) {
	svc := &fakeService{}
	e, _ := newEngine(svc)
	e.replace([]task.Task{{ID: 1, Status: task.StatusReview}})

	d, _ := e.StartDrag(1)
	if _, err := e.Drop(d, task.StatusComplete); err != nil {
		t.Fatalf("first drop: %v", err)
	}
	// Same gesture, third column, first transition unsettled.
	if _, err := e.Drop(d, task.StatusBlocked); !errors.Is(err, ErrTransitionPending) {
		t.Errorf("expected ErrTransitionPending, got %v", err)
	}
}

func TestRefreshReplacesAndReconciles(t *testing.T) {
	svc := &fakeService{tasks: []task.Task{
		{ID: 1, Status: task.StatusInProgress, DependencyDetails: []task.Summary{{ID: 3, Status: task.StatusNotStarted}}},
		{ID: 3, Status: task.StatusNotStarted},
	}}
	e, sel := newEngine(svc)
	sel.Toggle(1)
	sel.Toggle(2)

	if !e.Stale() {
		t.Fatal("a fresh engine should start stale")
	}
	if err := run(t, e.Refresh(task.Filters{}, false)); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if e.Stale() {
		t.Error("refresh should clear staleness")
	}
	if len(e.Tasks()) != 2 {
		t.Fatalf("cache has %d tasks, want 2", len(e.Tasks()))
	}
	if sel.Has(2) {
		t.Error("reconcile should drop ids gone from the view")
	}
	if !sel.Has(1) {
		t.Error("reconcile should keep visible ids")
	}
	ins := e.Insights()
	if len(ins.Blocked) != 1 || ins.Blocked[0].ID != 1 {
		t.Errorf("blocked insight = %+v", ins.Blocked)
	}
}

func TestRefreshReviewQueue(t *testing.T) {
	svc := &fakeService{}
	e, _ := newEngine(svc)
	if err := run(t, e.Refresh(task.Filters{}, true)); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if svc.reviewCalls != 1 || svc.listCalls != 0 {
		t.Errorf("review=%d list=%d, want 1/0", svc.reviewCalls, svc.listCalls)
	}
}

func TestRefreshErrorKeepsCache(t *testing.T) {
	svc := &fakeService{tasks: []task.Task{{ID: 1}}}
	e, _ := newEngine(svc)
	if err := run(t, e.Refresh(task.Filters{}, false)); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	svc.listErr = errors.New("unreachable")
	e.Invalidate()
	if err := run(t, e.Refresh(task.Filters{}, false)); err == nil {
		t.Fatal("expected refresh error")
	}
	if len(e.Tasks()) != 1 {
		t.Error("failed refresh should keep the previous collection")
	}
	if !e.Stale() {
		t.Error("failed refresh should leave the cache stale")
	}
}

func TestRequestCreateInvalidates(t *testing.T) {
	svc := &fakeService{}
	e, _ := newEngine(svc)
	e.replace(nil)
	if e.Stale() {
		t.Fatal("replace should clear staleness")
	}
	if err := run(t, e.RequestCreate(task.Draft{Name: "Post accruals"})); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !e.Stale() {
		t.Error("creation should invalidate the cache")
	}
}
