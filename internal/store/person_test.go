package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/tally/internal/model"
)

func TestPersonCRUD(t *testing.T) {
	ps := NewPersonStore(setupTestDB(t))
	ctx := context.Background()

	// Create
	p, err := ps.Create(ctx, "Alice")
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	if p.Name != "Alice" {
		t.Errorf("name = %q, want %q", p.Name, "Alice")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	// Get by ID
	got, err := ps.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if got == nil {
		t.Fatal("expected person, got nil")
	}
	if got.Name != "Alice" {
		t.Errorf("name = %q, want %q", got.Name, "Alice")
	}

	// Update
	updated, err := ps.Update(ctx, p.ID, "Alicia")
	if err != nil {
		t.Fatalf("update person: %v", err)
	}
	if updated.Name != "Alicia" {
		t.Errorf("name = %q, want %q", updated.Name, "Alicia")
	}

	// Delete
	if err := ps.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete person: %v", err)
	}
	got, err = ps.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get deleted person: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestPersonNotFound(t *testing.T) {
	ps := NewPersonStore(setupTestDB(t))

	got, err := ps.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if got != nil {
		t.Error("expected nil for non-existent person")
	}
}

func TestPersonDuplicateName(t *testing.T) {
	ps := NewPersonStore(setupTestDB(t))
	ctx := context.Background()

	if _, err := ps.Create(ctx, "Bob"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := ps.Create(ctx, "Bob")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	carol, _ := ps.Create(ctx, "Carol")
	_, err = ps.Update(ctx, carol.ID, "Bob")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on rename, got %v", err)
	}

	// Renaming to your own name is not a conflict
	if _, err := ps.Update(ctx, carol.ID, "Carol"); err != nil {
		t.Fatalf("rename to same name: %v", err)
	}
}

func TestPersonListOrdering(t *testing.T) {
	ps := NewPersonStore(setupTestDB(t))
	ctx := context.Background()

	ps.Create(ctx, "Zoe")
	ps.Create(ctx, "Adam")
	ps.Create(ctx, "Mia")

	persons, err := ps.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(persons) != 3 {
		t.Fatalf("expected 3 persons, got %d", len(persons))
	}
	want := []string{"Adam", "Mia", "Zoe"}
	for i, name := range want {
		if persons[i].Name != name {
			t.Errorf("persons[%d].Name = %q, want %q", i, persons[i].Name, name)
		}
	}
}

func TestPersonDeleteCascadesAssignments(t *testing.T) {
	db := setupTestDB(t)
	ps := NewPersonStore(db)
	as := NewActionStore(db)
	asg := NewAssignmentStore(db)
	ctx := context.Background()

	p, _ := ps.Create(ctx, "Alice")
	r, _ := as.Create(ctx, "reward", "Homework", 5)
	if _, err := asg.CreateBulk(ctx, []int64{p.ID}, "reward", r.ID, testNow); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := ps.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	left, err := asg.List(ctx, model.AssignmentFilter{PersonID: p.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected assignments to be removed with person, got %d", len(left))
	}
}
