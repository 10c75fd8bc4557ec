// Package model は、アプリケーションのデータモデル定義を提供します。
package model

// Phase はプロジェクト内の実行フェーズを表すモデルです。
// Orderはプロジェクト内での表示・実行順序を定義します（連番である必要はありません）。
type Phase struct {
	ID        int64   `json:"id"`
	ProjectID int64   `json:"project_id"` // 所属プロジェクトID
	Name      string  `json:"name"`       // フェーズ名
	Order     int     `json:"order"`      // 表示・実行順序
	Tasks     []*Task `json:"tasks"`
}

// NewPhase は新しいPhaseインスタンスを作成します。
// IDはデータベース側で自動生成されるため、-1を設定します。
func NewPhase(projectID int64, name string, order int) (*Phase, error) {
	ph := &Phase{
		ID:        -1, // DBのAUTOINCREMENTで自動生成
		ProjectID: projectID,
		Name:      name,
		Order:     order,
		Tasks:     []*Task{},
	}
	if err := ph.Validate(); err != nil {
		return nil, err
	}
	return ph, nil
}

// LoadPhase は既存のPhaseインスタンスを作成します。
func LoadPhase(id, projectID int64, name string, order int) (*Phase, error) {
	if id <= 0 {
		return nil, NewValidationError("id is required for loaded phase")
	}
	ph := &Phase{
		ID:        id,
		ProjectID: projectID,
		Name:      name,
		Order:     order,
		Tasks:     []*Task{},
	}
	if err := ph.Validate(); err != nil {
		return nil, err
	}
	return ph, nil
}

// Validate はフェーズのデータバリデーションを行います。
func (ph *Phase) Validate() error {
	if ph.Name == "" {
		return NewValidationError("name is required")
	}
	if ph.ProjectID == 0 {
		return NewValidationError("project_id is required")
	}
	return nil
}
