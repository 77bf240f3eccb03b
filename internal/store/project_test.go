package store

import (
	"context"
	"testing"

	"github.com/huddlehq/huddle/internal/model"
)

func TestCreateProject_SeedsCreatorAsTeamLead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &model.Project{Name: "X", OneLineIdea: "Y"}
	if err := s.CreateProject(ctx, p, "Z"); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected non-empty ID after create")
	}

	got, err := s.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if len(got.Members) != 1 {
		t.Fatalf("got %d members, want 1", len(got.Members))
	}
	if got.Members[0].Name != "Z" {
		t.Errorf("member name = %q, want %q", got.Members[0].Name, "Z")
	}
	if got.Members[0].Role != model.RoleTeamLead {
		t.Errorf("member role = %q, want %q", got.Members[0].Role, model.RoleTeamLead)
	}
}

func TestCreateProject_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedProject(t, s, "dup", "Alice")

	p := &model.Project{Name: "dup", OneLineIdea: "again"}
	if err := s.CreateProject(ctx, p, "Bob"); err != ErrConflict {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetProject(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "before", "Alice")
	p.Name = "after"
	p.OneLineIdea = "updated idea"
	if err := s.UpdateProject(ctx, p); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	got, _ := s.GetProject(ctx, p.ID)
	if got.Name != "after" {
		t.Errorf("name = %q, want %q", got.Name, "after")
	}
	if got.OneLineIdea != "updated idea" {
		t.Errorf("idea = %q, want %q", got.OneLineIdea, "updated idea")
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("expected updated_at >= created_at")
	}
}

func TestAddMember(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "team", "Alice")

	m := &model.Member{ProjectID: p.ID, Name: "Bob"}
	if err := s.AddMember(ctx, m); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if m.Role != model.RoleMember {
		t.Errorf("default role = %q, want %q", m.Role, model.RoleMember)
	}

	members, err := s.ListMembers(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("got %d members, want 2", len(members))
	}
}

func TestAddMember_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "team", "Alice")

	m := &model.Member{ProjectID: p.ID, Name: "Alice"}
	if err := s.AddMember(ctx, m); err != ErrConflict {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "team", "Alice")
	bob := &model.Member{ProjectID: p.ID, Name: "Bob"}
	if err := s.AddMember(ctx, bob); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	// With two members, removal succeeds.
	if err := s.RemoveMember(ctx, p.ID, bob.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	members, _ := s.ListMembers(ctx, p.ID)
	if len(members) != 1 {
		t.Fatalf("got %d members, want 1", len(members))
	}

	// The last member can never be removed.
	if err := s.RemoveMember(ctx, p.ID, members[0].ID); err != ErrLastMember {
		t.Errorf("expected ErrLastMember, got %v", err)
	}
}

func TestRemoveMember_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "team", "Alice")
	if err := s.AddMember(ctx, &model.Member{ProjectID: p.ID, Name: "Bob"}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := s.RemoveMember(ctx, p.ID, "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
