// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Plan は生成AIが返す実装計画のコントラクトです。永続化はされず、
// バリデーション後すぐにApplyPlanで射影されて破棄されます。
// JSONタグは生成AIとの契約（キャメルケース）に合わせています。
type Plan struct {
	ProjectSummary string            `json:"projectSummary"`
	Team           map[string]any    `json:"team,omitempty"`
	Architecture   *PlanArchitecture `json:"architecture,omitempty"`
	TechStack      *PlanTechStack    `json:"techStack,omitempty"`
	Phases         []*PlanPhase      `json:"phases"`
}

// PlanPhase は計画内のフェーズ仕様です。
type PlanPhase struct {
	Name  string      `json:"name"`
	Order int         `json:"order"`
	Goal  string      `json:"goal,omitempty"`
	Tasks []*PlanTask `json:"tasks"`
}

// PlanTask は計画内のタスク仕様です。Priorityは意味的優先度のまま
// 保持し、格納時にOrdinalへ変換します。
type PlanTask struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Priority      Priority `json:"priority"`
	EstimateHours float64  `json:"estimateHours"`
}

// PlanArchitecture は計画に付随するアーキテクチャ概要です（任意）。
type PlanArchitecture struct {
	Overview string       `json:"overview,omitempty"`
	Style    string       `json:"style,omitempty"`
	Modules  []PlanModule `json:"modules,omitempty"`
	DataFlow string       `json:"dataFlow,omitempty"`
}

// PlanModule はアーキテクチャ内の1モジュールです。
type PlanModule struct {
	Name           string `json:"name,omitempty"`
	Responsibility string `json:"responsibility,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// PlanTechStack は計画に付随する技術スタック案です（任意）。
type PlanTechStack struct {
	Rationale         string   `json:"rationale,omitempty"`
	Backend           []string `json:"backend,omitempty"`
	Frontend          []string `json:"frontend,omitempty"`
	Database          []string `json:"database,omitempty"`
	Infrastructure    []string `json:"infrastructure,omitempty"`
	TestingAndTooling []string `json:"testingAndTooling,omitempty"`
}

// rawPlan はParsePlanの中間表現です。必須フィールドの欠落を
// 型のゼロ値と区別するため、ポインタでデコードします。
type rawPlan struct {
	ProjectSummary *string           `json:"projectSummary"`
	Team           map[string]any    `json:"team"`
	Architecture   *PlanArchitecture `json:"architecture"`
	TechStack      *PlanTechStack    `json:"techStack"`
	Phases         *[]rawPlanPhase   `json:"phases"`
}

type rawPlanPhase struct {
	Name  *string        `json:"name"`
	Order *float64       `json:"order"`
	Goal  *string        `json:"goal"`
	Tasks *[]rawPlanTask `json:"tasks"`
}

type rawPlanTask struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Priority      *string  `json:"priority"`
	EstimateHours *float64 `json:"estimateHours"`
}

// ParsePlan は生成AIの生テキストをパースし、スキーマに適合する計画を
// 返します。パース失敗・必須フィールド欠落・型不一致・優先度の列挙値
// 違反はすべて単一のPlanShapeErrorとして返し、部分的に受理することは
// ありません。副作用はありません。
func ParsePlan(raw string) (*Plan, error) {
	text := stripCodeFence(raw)

	var rp rawPlan
	if err := json.Unmarshal([]byte(text), &rp); err != nil {
		return nil, NewPlanShapeError(fmt.Sprintf("invalid JSON: %v", err), raw)
	}

	if rp.ProjectSummary == nil {
		return nil, NewPlanShapeError("missing required field: projectSummary", raw)
	}
	if rp.Phases == nil {
		return nil, NewPlanShapeError("missing required field: phases", raw)
	}

	plan := &Plan{
		ProjectSummary: *rp.ProjectSummary,
		Team:           rp.Team,
		Architecture:   rp.Architecture,
		TechStack:      rp.TechStack,
		Phases:         []*PlanPhase{},
	}

	for i, rph := range *rp.Phases {
		if rph.Name == nil {
			return nil, NewPlanShapeError(fmt.Sprintf("phases[%d]: missing required field: name", i), raw)
		}
		if rph.Order == nil {
			return nil, NewPlanShapeError(fmt.Sprintf("phases[%d]: missing required field: order", i), raw)
		}
		if rph.Tasks == nil {
			return nil, NewPlanShapeError(fmt.Sprintf("phases[%d]: missing required field: tasks", i), raw)
		}

		phase := &PlanPhase{
			Name:  *rph.Name,
			Order: int(*rph.Order),
			Tasks: []*PlanTask{},
		}
		if rph.Goal != nil {
			phase.Goal = *rph.Goal
		}

		for j, rt := range *rph.Tasks {
			if rt.Title == nil {
				return nil, NewPlanShapeError(fmt.Sprintf("phases[%d].tasks[%d]: missing required field: title", i, j), raw)
			}
			if rt.Description == nil {
				return nil, NewPlanShapeError(fmt.Sprintf("phases[%d].tasks[%d]: missing required field: description", i, j), raw)
			}
			if rt.Priority == nil {
				return nil, NewPlanShapeError(fmt.Sprintf("phases[%d].tasks[%d]: missing required field: priority", i, j), raw)
			}
			if rt.EstimateHours == nil {
				return nil, NewPlanShapeError(fmt.Sprintf("phases[%d].tasks[%d]: missing required field: estimateHours", i, j), raw)
			}

			priority, err := ParsePriority(*rt.Priority)
			if err != nil {
				return nil, NewPlanShapeError(fmt.Sprintf("phases[%d].tasks[%d]: %v", i, j, err), raw)
			}

			phase.Tasks = append(phase.Tasks, &PlanTask{
				Title:         *rt.Title,
				Description:   *rt.Description,
				Priority:      priority,
				EstimateHours: *rt.EstimateHours,
			})
		}

		plan.Phases = append(plan.Phases, phase)
	}

	return plan, nil
}

// stripCodeFence はモデルがJSONをMarkdownコードフェンスで囲んで返した
// 場合にフェンスを取り除きます。プロンプトで禁止していても稀に発生
// するため、パース前に正規化します。
func stripCodeFence(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// 先頭行（``` または ```json）を落とす
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	} else {
		return text
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
