package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/huddlehq/huddle/internal/model"
)

func TestCreateTask_AutoPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "board", "Alice")

	// Creating N tasks in one column without positions yields 0..N-1.
	for i := 0; i < 4; i++ {
		task := &model.Task{
			ProjectID: p.ID,
			ColumnID:  "todo",
			Title:     fmt.Sprintf("task %d", i),
		}
		if err := s.CreateTask(ctx, task, true); err != nil {
			t.Fatalf("CreateTask %d: %v", i, err)
		}
		if task.Position != i {
			t.Errorf("task %d position = %d, want %d", i, task.Position, i)
		}
	}

	// A different column starts its own sequence at 0.
	other := &model.Task{ProjectID: p.ID, ColumnID: "doing", Title: "other"}
	if err := s.CreateTask(ctx, other, true); err != nil {
		t.Fatalf("CreateTask other column: %v", err)
	}
	if other.Position != 0 {
		t.Errorf("other column position = %d, want 0", other.Position)
	}
}

func TestCreateTask_ExplicitPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "board", "Alice")

	task := &model.Task{ProjectID: p.ID, ColumnID: "todo", Title: "pinned", Position: 7}
	if err := s.CreateTask(ctx, task, false); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Position != 7 {
		t.Errorf("position = %d, want 7", task.Position)
	}

	// Auto-assignment continues after the explicit position.
	next := &model.Task{ProjectID: p.ID, ColumnID: "todo", Title: "next"}
	if err := s.CreateTask(ctx, next, true); err != nil {
		t.Fatalf("CreateTask next: %v", err)
	}
	if next.Position != 8 {
		t.Errorf("next position = %d, want 8", next.Position)
	}
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "board", "Alice")

	task := &model.Task{ProjectID: p.ID, ColumnID: "todo", Title: "write tests", Description: "all of them"}
	if err := s.CreateTask(ctx, task, true); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "write tests" {
		t.Errorf("title = %q", got.Title)
	}

	got.Title = "write more tests"
	got.ColumnID = "doing"
	if err := s.UpdateTask(ctx, got); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	got2, _ := s.GetTask(ctx, task.ID)
	if got2.Title != "write more tests" || got2.ColumnID != "doing" {
		t.Errorf("update not applied: %+v", got2)
	}

	list, err := s.ListTasks(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d tasks, want 1", len(list))
	}

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := s.GetTask(ctx, task.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteTask(ctx, task.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListPivots_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "pivoting", "Alice")

	first := &model.Pivot{ProjectID: p.ID, Description: "b2b instead", Reason: "no consumer traction"}
	if err := s.AddPivot(ctx, first); err != nil {
		t.Fatalf("AddPivot: %v", err)
	}
	second := &model.Pivot{ProjectID: p.ID, Description: "mobile first", Reason: "judges have phones"}
	if err := s.AddPivot(ctx, second); err != nil {
		t.Fatalf("AddPivot: %v", err)
	}

	pivots, err := s.ListPivots(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListPivots: %v", err)
	}
	if len(pivots) != 2 {
		t.Fatalf("got %d pivots, want 2", len(pivots))
	}
	if pivots[0].ID != second.ID {
		t.Errorf("pivots[0] = %q, want the most recent entry %q", pivots[0].ID, second.ID)
	}
	if pivots[1].ID != first.ID {
		t.Errorf("pivots[1] = %q, want the older entry %q", pivots[1].ID, first.ID)
	}
}

func TestSubmissionUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProject(t, s, "shipping", "Alice")

	if _, err := s.GetSubmission(ctx, p.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound before upsert, got %v", err)
	}

	sub := &model.Submission{ProjectID: p.ID, GithubURL: "https://github.com/x"}
	if err := s.UpsertSubmission(ctx, sub); err != nil {
		t.Fatalf("UpsertSubmission insert: %v", err)
	}

	got, err := s.GetSubmission(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if got.IsComplete() {
		t.Error("submission with only github url should not be complete")
	}

	got.PresentationURL = "https://slides/x"
	if err := s.UpsertSubmission(ctx, got); err != nil {
		t.Fatalf("UpsertSubmission update: %v", err)
	}

	got2, _ := s.GetSubmission(ctx, p.ID)
	if !got2.IsComplete() {
		t.Error("submission with both urls should be complete")
	}
	if got2.GithubURL != "https://github.com/x" {
		t.Errorf("github url lost on update: %q", got2.GithubURL)
	}
}
