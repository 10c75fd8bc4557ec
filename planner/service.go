// Package planner は、生成AI呼び出し・検証・永続化を合成する
// オーケストレーターを提供します。
package planner

import (
	"context"
	"fmt"
	"log"

	"github.com/stsysd/keikaku/model"
	"github.com/stsysd/keikaku/store"
)

// Generator は生成AIサービスへの1回の呼び出しを抽象化します。
// テストでは決定的なスタブに差し替えます。
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service は生成・検証・永続化の合成フローを提供します。
type Service struct {
	store store.Store
	llm   Generator
}

// NewService は新しいServiceを作成します。
func NewService(st store.Store, llm Generator) *Service {
	return &Service{
		store: st,
		llm:   llm,
	}
}

// DraftBriefInput はdraft-briefモードの入力です。
type DraftBriefInput struct {
	Name      string
	Idea      string
	TeamSize  string
	Timeframe string
	DevSkills string
}

// CreateProjectInput はcreate-with-agentsフローの入力です。
type CreateProjectInput struct {
	Name      string
	Brief     string
	Idea      string
	TeamSize  string
	Timeframe string
	DevSkills string
}

// PartialCreateError はプロジェクト作成後に計画の生成・検証・適用が
// 失敗した場合のエラーです。作成済みプロジェクトは空（フェーズなし）の
// まま残るため、呼び出し側がリトライできるようにIDを保持します。
type PartialCreateError struct {
	ProjectID int64
	Err       error
}

func (e *PartialCreateError) Error() string {
	return fmt.Sprintf("project %d created without plan: %v", e.ProjectID, e.Err)
}

func (e *PartialCreateError) Unwrap() error {
	return e.Err
}

// DraftBrief はアイデアからプロジェクトブリーフ（markdown）を生成します。
// JSONコントラクトはありません。
func (s *Service) DraftBrief(ctx context.Context, in *DraftBriefInput) (string, error) {
	if in == nil || in.Idea == "" {
		return "", model.NewValidationError("field 'idea' is required")
	}
	return s.llm.Complete(ctx, briefSystemPrompt, buildDraftBriefPrompt(in))
}

// CreateWithAgents はプロジェクト行を先に作成してから計画を生成し、
// 検証・永続化して完全なプロジェクトを返します。生成や検証が失敗
// しても作成済みプロジェクトは空のまま残ります（プロンプト失敗で
// ユーザーの基本情報を失わないため）。
func (s *Service) CreateWithAgents(ctx context.Context, in *CreateProjectInput) (*model.Project, *model.Plan, error) {
	if in == nil || in.Name == "" || in.Brief == "" {
		return nil, nil, model.NewValidationError("fields 'name' and 'brief' are required")
	}

	// アイデアが空の場合はブリーフ本文をそのまま保存する
	idea := in.Idea
	if idea == "" {
		idea = in.Brief
	}

	project, err := model.NewProject(in.Name, idea, in.DevSkills)
	if err != nil {
		return nil, nil, err
	}

	// 1) プロジェクト行を先に作成
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, nil, err
	}

	// 2) 計画の生成
	raw, err := s.llm.Complete(ctx, plannerSystemPrompt, buildPlanFromBriefPrompt(in))
	if err != nil {
		log.Printf("planner: plan generation failed for project %d: %v", project.ID, err)
		return project, nil, &PartialCreateError{ProjectID: project.ID, Err: err}
	}

	// 3) 検証
	plan, err := model.ParsePlan(raw)
	if err != nil {
		log.Printf("planner: plan validation failed for project %d: %v", project.ID, err)
		return project, nil, &PartialCreateError{ProjectID: project.ID, Err: err}
	}

	// 4) 永続化（空のプロジェクトへの適用は新規作成と等価）
	full, err := s.store.ApplyPlan(ctx, project.ID, plan)
	if err != nil {
		log.Printf("planner: plan apply failed for project %d: %v", project.ID, err)
		return project, nil, &PartialCreateError{ProjectID: project.ID, Err: err}
	}

	return full, plan, nil
}

// Replan は現在のDB状態をコンテキストとして計画を再生成し、検証済みの
// 候補計画を返します。ストアへの書き込みは行いません（プレビュー専用）。
// 永続化するには呼び出し側が明示的にApplyPlanを実行します。
func (s *Service) Replan(ctx context.Context, projectID int64) (*model.Plan, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	raw, err := s.llm.Complete(ctx, plannerSystemPrompt, buildReplanPrompt(project))
	if err != nil {
		return nil, err
	}

	return model.ParsePlan(raw)
}

// Risks は現在のプロジェクト状態に対するリスク分析（markdown）を生成します。
func (s *Service) Risks(ctx context.Context, projectID int64) (string, error) {
	return s.freeText(ctx, projectID, buildRisksPrompt)
}

// Spec は現在のプロジェクト状態に対する技術仕様（markdown）を生成します。
func (s *Service) Spec(ctx context.Context, projectID int64) (string, error) {
	return s.freeText(ctx, projectID, buildSpecPrompt)
}

// DocTex は現在のプロジェクト状態のLaTeXドキュメントを生成します。
func (s *Service) DocTex(ctx context.Context, projectID int64) (string, error) {
	return s.freeText(ctx, projectID, buildDocTexPrompt)
}

// freeText はスナップショットを入力とする自由テキスト生成モードの
// 共通フローです。JSONコントラクトはなく、生成されたテキストを
// そのまま返します。
func (s *Service) freeText(ctx context.Context, projectID int64, buildPrompt func(*model.Project) string) (string, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	return s.llm.Complete(ctx, analystSystemPrompt, buildPrompt(project))
}
