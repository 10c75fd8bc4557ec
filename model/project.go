// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"time"
)

// Project はプロジェクトエンティティを表すモデルです。
// PhasesはDBから読み込む際にorder昇順でネストされます。
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`       // プロジェクト名
	Idea      string    `json:"idea"`       // アイデア・ブリーフの本文
	DevSkills string    `json:"dev_skills"` // 開発チームのスキルヒント（任意）
	CreatedAt time.Time `json:"created_at"` // 作成日時
	Phases    []*Phase  `json:"phases"`
}

// NewProject は新しいProjectインスタンスを作成します。
// IDはデータベース側で自動生成されるため、-1を設定します。
func NewProject(name, idea, devSkills string) (*Project, error) {
	p := &Project{
		ID:        -1, // DBのAUTOINCREMENTで自動生成
		Name:      name,
		Idea:      idea,
		DevSkills: devSkills,
		CreatedAt: time.Now(),
		Phases:    []*Phase{},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadProject は既存のProjectインスタンスを作成します。
func LoadProject(id int64, name, idea, devSkills string, createdAt time.Time) (*Project, error) {
	// LoadProjectはDBから読み込んだ行用なので、IDは必須
	if id <= 0 {
		return nil, errors.New("id is required for loaded project")
	}
	p := &Project{
		ID:        id,
		Name:      name,
		Idea:      idea,
		DevSkills: devSkills,
		CreatedAt: createdAt,
		Phases:    []*Phase{},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate はプロジェクトのデータバリデーションを行います。
func (p *Project) Validate() error {
	if p.Name == "" {
		return NewValidationError("name is required")
	}
	if p.CreatedAt.IsZero() {
		return NewValidationError("created_at is required")
	}
	return nil
}
