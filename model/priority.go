// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import "fmt"

// Priority は生成AIが返すタスクの意味的優先度を表す列挙型です。
// 格納時には必ずOrdinalで序数値（1/2/3）に変換し、意味的文字列を
// ストアに到達させません。
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority は文字列をPriorityに変換します。
// 列挙値以外はバリデーションエラーになります。
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", NewValidationError(fmt.Sprintf("invalid priority value: %q", s))
}

// Ordinal は意味的優先度を格納用の序数値に変換します。
func (p Priority) Ordinal() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// IsValidOrdinal は序数値が{1,2,3}のいずれかであるかを返します。
func IsValidOrdinal(n int) bool {
	return n >= 1 && n <= 3
}

// PriorityLabel は序数値を表示用ラベルに変換します。
// 範囲外の値はLowとして扱います（表示側のフォールバックであり、
// 格納値を書き換えることはありません）。
func PriorityLabel(ordinal int) string {
	switch {
	case ordinal >= 3:
		return "High"
	case ordinal == 2:
		return "Medium"
	default:
		return "Low"
	}
}
