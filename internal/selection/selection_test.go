package selection

import "testing"

func TestToggle(t *testing.T) {
	s := NewSet()
	s.Toggle(1)
	s.Toggle(2)
	if !s.Has(1) || !s.Has(2) {
		t.Fatal("toggled ids should be selected")
	}
	s.Toggle(1)
	if s.Has(1) {
		t.Error("second toggle should deselect")
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

func TestSelectAllToggles(t *testing.T) {
	visible := []int64{1, 2, 3}
	s := NewSet()

	s.SelectAll(visible)
	if s.Len() != 3 {
		t.Fatalf("select all picked %d ids, want 3", s.Len())
	}

	s.SelectAll(visible)
	if s.Len() != 0 {
		t.Errorf("second select all should clear, got %d selected", s.Len())
	}
}

func TestSelectAllFromPartial(t *testing.T) {
	visible := []int64{1, 2, 3}
	s := NewSet()
	s.Toggle(2)

	s.SelectAll(visible)
	if s.Len() != 3 {
		t.Errorf("select all from partial should expand to full set, got %d", s.Len())
	}
}

func TestSelectAllEmptyVisible(t *testing.T) {
	s := NewSet()
	s.SelectAll(nil)
	if s.Len() != 0 {
		t.Errorf("select all over empty collection should select nothing, got %d", s.Len())
	}
}

func TestReconcileDropsHiddenIDs(t *testing.T) {
	s := NewSet()
	s.Toggle(1)
	s.Toggle(2)
	s.Toggle(3)

	s.Reconcile([]int64{1, 3, 4})
	if s.Has(2) {
		t.Error("id 2 left the visible set and should have been dropped")
	}
	if !s.Has(1) || !s.Has(3) {
		t.Error("still-visible ids should survive reconcile")
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestIDsSorted(t *testing.T) {
	s := NewSet()
	s.Toggle(30)
	s.Toggle(10)
	s.Toggle(20)
	ids := s.IDs()
	want := []int64{10, 20, 30}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}
