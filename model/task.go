// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"fmt"
	"time"
)

// TaskStatus はタスクの進行状態を表す列挙型です。
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// ParseTaskStatus は文字列をTaskStatusに変換します。
// 列挙値以外はバリデーションエラーになります。
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return TaskStatus(s), nil
	}
	return "", NewValidationError(fmt.Sprintf("invalid status value: %q", s))
}

// IsValid はTaskStatusが列挙値のいずれかであるかを返します。
func (s TaskStatus) IsValid() bool {
	_, err := ParseTaskStatus(string(s))
	return err == nil
}

// Task はフェーズに属する作業項目を表すモデルです。
// Priorityは格納用の序数値（1=low, 2=medium, 3=high）です。
type Task struct {
	ID          int64      `json:"id"`
	PhaseID     int64      `json:"phase_id"` // 所属フェーズID
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewTask は新しいTaskインスタンスを作成します。
// IDはデータベース側で自動生成されるため、-1を設定します。
// 新規タスクのステータスは常にtodoから始まります。
func NewTask(phaseID int64, title, description string, priority int) (*Task, error) {
	t := &Task{
		ID:          -1, // DBのAUTOINCREMENTで自動生成
		PhaseID:     phaseID,
		Title:       title,
		Description: description,
		Status:      TaskStatusTodo,
		Priority:    priority,
		CreatedAt:   time.Now(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTask は既存のTaskインスタンスを作成します。
func LoadTask(id, phaseID int64, title, description string, status TaskStatus, priority int, createdAt time.Time) (*Task, error) {
	if id <= 0 {
		return nil, NewValidationError("id is required for loaded task")
	}
	t := &Task{
		ID:          id,
		PhaseID:     phaseID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   createdAt,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate はタスクのデータバリデーションを行います。
func (t *Task) Validate() error {
	if t.Title == "" {
		return NewValidationError("title is required")
	}
	if t.PhaseID == 0 {
		return NewValidationError("phase_id is required")
	}
	if !t.Status.IsValid() {
		return NewValidationError(fmt.Sprintf("invalid status value: %q", t.Status))
	}
	if !IsValidOrdinal(t.Priority) {
		return NewValidationError(fmt.Sprintf("priority must be 1, 2 or 3, got %d", t.Priority))
	}
	return nil
}
