package store

import (
	"context"
	"testing"

	"github.com/dukerupert/tally/internal/model"
)

func TestActionCRUD(t *testing.T) {
	as := NewActionStore(setupTestDB(t))
	ctx := context.Background()

	// Create
	r, err := as.Create(ctx, model.KindReward, "Tidy room", 10)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if r.Kind != model.KindReward {
		t.Errorf("kind = %q, want %q", r.Kind, model.KindReward)
	}
	if r.Value != 10 {
		t.Errorf("value = %d, want 10", r.Value)
	}

	// Update
	updated, err := as.Update(ctx, model.KindReward, r.ID, "Tidy whole room", 15)
	if err != nil {
		t.Fatalf("update reward: %v", err)
	}
	if updated.Name != "Tidy whole room" || updated.Value != 15 {
		t.Errorf("updated = %+v", updated)
	}

	// Delete
	if err := as.Delete(ctx, model.KindReward, r.ID); err != nil {
		t.Fatalf("delete reward: %v", err)
	}
	got, err := as.GetByID(ctx, model.KindReward, r.ID)
	if err != nil {
		t.Fatalf("get deleted reward: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestActionLookupIsKindScoped(t *testing.T) {
	as := NewActionStore(setupTestDB(t))
	ctx := context.Background()

	r, _ := as.Create(ctx, model.KindReward, "Dishes", 5)

	got, err := as.GetByID(ctx, model.KindPunishment, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("reward must not resolve as a punishment")
	}

	// Deleting through the wrong kind leaves the row alone
	if err := as.Delete(ctx, model.KindPunishment, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = as.GetByID(ctx, model.KindReward, r.ID)
	if got == nil {
		t.Error("reward should survive a punishment delete")
	}
}

func TestActionSignConstraint(t *testing.T) {
	as := NewActionStore(setupTestDB(t))
	ctx := context.Background()

	if _, err := as.Create(ctx, model.KindReward, "Bad reward", -5); err == nil {
		t.Error("expected CHECK failure for negative reward")
	}
	if _, err := as.Create(ctx, model.KindPunishment, "Bad punishment", 5); err == nil {
		t.Error("expected CHECK failure for positive punishment")
	}
	if _, err := as.Create(ctx, model.KindReward, "Zero", 0); err == nil {
		t.Error("expected CHECK failure for zero value")
	}
}

func TestActionList(t *testing.T) {
	as := NewActionStore(setupTestDB(t))
	ctx := context.Background()

	as.Create(ctx, model.KindReward, "Walk dog", 3)
	as.Create(ctx, model.KindPunishment, "Late", -4)
	as.Create(ctx, model.KindReward, "Bake", 6)

	rewards, err := as.List(ctx, model.KindReward)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rewards) != 2 {
		t.Fatalf("expected 2 rewards, got %d", len(rewards))
	}
	if rewards[0].Name != "Bake" || rewards[1].Name != "Walk dog" {
		t.Errorf("rewards not ordered by name: %q, %q", rewards[0].Name, rewards[1].Name)
	}

	punishments, err := as.List(ctx, model.KindPunishment)
	if err != nil {
		t.Fatalf("list punishments: %v", err)
	}
	if len(punishments) != 1 || punishments[0].Value != -4 {
		t.Errorf("punishments = %+v", punishments)
	}

	all, err := as.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 actions, got %d", len(all))
	}
	if all[0].Kind != model.KindPunishment {
		t.Errorf("all[0].Kind = %q, want punishment first", all[0].Kind)
	}
}
