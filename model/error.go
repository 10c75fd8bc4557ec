// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import "errors"

// センチネルエラー - リソースが見つからない場合
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrPhaseNotFound   = errors.New("phase not found")
	ErrTaskNotFound    = errors.New("task not found")
)

// ValidationError はバリデーションエラーを表す型
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError はValidationErrorを生成するヘルパー関数
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// PlanShapeError は生成AIの出力が計画のJSONスキーマに適合しない場合の
// エラーです。診断のために生の出力テキストを保持します。
type PlanShapeError struct {
	Reason string
	Raw    string
}

func (e *PlanShapeError) Error() string {
	return "invalid plan shape: " + e.Reason
}

// NewPlanShapeError はPlanShapeErrorを生成するヘルパー関数
func NewPlanShapeError(reason, raw string) error {
	return &PlanShapeError{Reason: reason, Raw: raw}
}
