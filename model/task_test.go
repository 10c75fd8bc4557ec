package model

import (
	"errors"
	"testing"
)

// TestNewTask tests the NewTask constructor
func TestNewTask(t *testing.T) {
	task, err := NewTask(1, "Set up repository", "Initialize the repository and CI", 2)
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if task.ID != -1 {
		t.Errorf("Expected ID -1 for new task, got %d", task.ID)
	}
	if task.PhaseID != 1 {
		t.Errorf("Expected phase ID 1, got %d", task.PhaseID)
	}

	// 新規タスクのステータスは常にtodoであること
	if task.Status != TaskStatusTodo {
		t.Errorf("Expected status %s for new task, got %s", TaskStatusTodo, task.Status)
	}

	if task.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

// TestNewTaskEmptyTitle tests that NewTask fails with empty title
func TestNewTaskEmptyTitle(t *testing.T) {
	_, err := NewTask(1, "", "Description", 2)
	if err == nil {
		t.Error("Expected error when creating task with empty title, got nil")
	}
}

// TestNewTaskInvalidPriority tests that NewTask rejects out-of-range priorities
func TestNewTaskInvalidPriority(t *testing.T) {
	for _, priority := range []int{0, 4, -1, 100} {
		_, err := NewTask(1, "Task", "Description", priority)
		if err == nil {
			t.Errorf("Expected error when creating task with priority %d, got nil", priority)
		}

		// バリデーションエラー型であることを確認
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("Expected ValidationError for priority %d, got %T", priority, err)
		}
	}
}

// TestParseTaskStatus tests task status parsing
func TestParseTaskStatus(t *testing.T) {
	// 列挙値は全てパースできること
	for _, valid := range []string{"todo", "in_progress", "done"} {
		status, err := ParseTaskStatus(valid)
		if err != nil {
			t.Errorf("ParseTaskStatus(%q): unexpected error: %v", valid, err)
		}
		if string(status) != valid {
			t.Errorf("ParseTaskStatus(%q): expected %s, got %s", valid, valid, status)
		}
	}

	// 列挙値以外は拒否されること
	for _, invalid := range []string{"", "TODO", "in-progress", "doing", "completed"} {
		_, err := ParseTaskStatus(invalid)
		if err == nil {
			t.Errorf("ParseTaskStatus(%q): expected error but got nil", invalid)
		}
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("ParseTaskStatus(%q): expected ValidationError, got %T", invalid, err)
		}
	}
}

// TestTaskValidateInvalidStatus tests that Validate rejects unknown status values
func TestTaskValidateInvalidStatus(t *testing.T) {
	task := &Task{
		ID:        1,
		PhaseID:   1,
		Title:     "Task",
		Status:    TaskStatus("blocked"),
		Priority:  2,
		CreatedAt: testTime(),
	}
	if err := task.Validate(); err == nil {
		t.Error("Expected error for unknown status value, got nil")
	}
}

// TestLoadTask tests the LoadTask constructor
func TestLoadTask(t *testing.T) {
	createdAt := testTime()
	task, err := LoadTask(7, 3, "Write tests", "Cover the store layer", TaskStatusInProgress, 3, createdAt)
	if err != nil {
		t.Fatalf("Failed to load task: %v", err)
	}

	if task.ID != 7 {
		t.Errorf("Expected ID 7, got %d", task.ID)
	}
	if task.Status != TaskStatusInProgress {
		t.Errorf("Expected status in_progress, got %s", task.Status)
	}
	if task.Priority != 3 {
		t.Errorf("Expected priority 3, got %d", task.Priority)
	}
	if !task.CreatedAt.Equal(createdAt) {
		t.Errorf("Expected CreatedAt %v, got %v", createdAt, task.CreatedAt)
	}
}

// TestLoadTaskWithInvalidID tests that LoadTask fails with non-positive ID
func TestLoadTaskWithInvalidID(t *testing.T) {
	_, err := LoadTask(0, 1, "Task", "", TaskStatusTodo, 1, testTime())
	if err == nil {
		t.Error("Expected error when loading task with zero ID, got nil")
	}
}
