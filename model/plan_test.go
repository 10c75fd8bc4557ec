package model

import (
	"errors"
	"strings"
	"testing"
)

// validPlanJSON はスキーマに適合する計画のサンプルです。
const validPlanJSON = `{
  "projectSummary": "A habit tracking app for small teams.",
  "phases": [
    {
      "name": "Phase 1: Foundation",
      "order": 1,
      "goal": "Ship the walking skeleton",
      "tasks": [
        {
          "title": "Set up repository",
          "description": "Initialize repo, CI and linters",
          "priority": "high",
          "estimateHours": 4
        },
        {
          "title": "Design data model",
          "description": "Projects, phases and tasks",
          "priority": "medium",
          "estimateHours": 6
        }
      ]
    },
    {
      "name": "Phase 2: Features",
      "order": 2,
      "tasks": [
        {
          "title": "Build habit list UI",
          "description": "List and detail views",
          "priority": "low",
          "estimateHours": 8
        }
      ]
    }
  ]
}`

// TestParsePlanValid tests parsing of a schema-conforming plan
func TestParsePlanValid(t *testing.T) {
	plan, err := ParsePlan(validPlanJSON)
	if err != nil {
		t.Fatalf("Failed to parse valid plan: %v", err)
	}

	if plan.ProjectSummary == "" {
		t.Error("Expected projectSummary to be set")
	}
	if len(plan.Phases) != 2 {
		t.Fatalf("Expected 2 phases, got %d", len(plan.Phases))
	}

	// フェーズの内容を確認
	first := plan.Phases[0]
	if first.Name != "Phase 1: Foundation" {
		t.Errorf("Expected phase name 'Phase 1: Foundation', got %q", first.Name)
	}
	if first.Order != 1 {
		t.Errorf("Expected phase order 1, got %d", first.Order)
	}
	if len(first.Tasks) != 2 {
		t.Fatalf("Expected 2 tasks in first phase, got %d", len(first.Tasks))
	}

	// タスクの優先度は意味的文字列のまま保持されること
	if first.Tasks[0].Priority != PriorityHigh {
		t.Errorf("Expected priority high, got %s", first.Tasks[0].Priority)
	}
	if first.Tasks[0].EstimateHours != 4 {
		t.Errorf("Expected estimate 4 hours, got %v", first.Tasks[0].EstimateHours)
	}

	// goalは任意フィールドであること
	if plan.Phases[1].Goal != "" {
		t.Errorf("Expected empty goal for second phase, got %q", plan.Phases[1].Goal)
	}
}

// TestParsePlanWithCodeFence tests that markdown code fences are stripped
func TestParsePlanWithCodeFence(t *testing.T) {
	fenced := "```json\n" + validPlanJSON + "\n```"
	plan, err := ParsePlan(fenced)
	if err != nil {
		t.Fatalf("Failed to parse fenced plan: %v", err)
	}
	if len(plan.Phases) != 2 {
		t.Errorf("Expected 2 phases, got %d", len(plan.Phases))
	}

	// 言語指定のないフェンスもパースできること
	fenced = "```\n" + validPlanJSON + "\n```"
	if _, err := ParsePlan(fenced); err != nil {
		t.Errorf("Failed to parse plan with plain code fence: %v", err)
	}
}

// TestParsePlanRejections tests that non-conforming output is rejected
// with a PlanShapeError carrying the raw text
func TestParsePlanRejections(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		description string
	}{
		{
			name:        "Not JSON",
			raw:         "Here is your plan: first do X, then do Y.",
			description: "JSONでない出力は拒否されること",
		},
		{
			name:        "Empty object",
			raw:         `{}`,
			description: "必須フィールドが全て欠けている場合は拒否されること",
		},
		{
			name:        "Missing projectSummary",
			raw:         `{"phases": []}`,
			description: "projectSummaryが欠けている場合は拒否されること",
		},
		{
			name:        "Missing phases",
			raw:         `{"projectSummary": "A project"}`,
			description: "phasesが欠けている場合は拒否されること",
		},
		{
			name:        "Phase missing order",
			raw:         `{"projectSummary": "s", "phases": [{"name": "P1", "tasks": []}]}`,
			description: "orderのないフェーズは拒否されること",
		},
		{
			name:        "Phase missing tasks",
			raw:         `{"projectSummary": "s", "phases": [{"name": "P1", "order": 1}]}`,
			description: "tasksのないフェーズは拒否されること",
		},
		{
			name: "Task with unknown priority",
			raw: `{"projectSummary": "s", "phases": [{"name": "P1", "order": 1, "tasks": [
				{"title": "T", "description": "D", "priority": "urgent", "estimateHours": 1}]}]}`,
			description: "優先度の列挙値違反は拒否されること",
		},
		{
			name: "Task missing estimateHours",
			raw: `{"projectSummary": "s", "phases": [{"name": "P1", "order": 1, "tasks": [
				{"title": "T", "description": "D", "priority": "low"}]}]}`,
			description: "estimateHoursのないタスクは拒否されること",
		},
		{
			name:        "Type mismatch on phases",
			raw:         `{"projectSummary": "s", "phases": "not an array"}`,
			description: "型が一致しない場合は拒否されること",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan(tt.raw)
			if err == nil {
				t.Fatalf("%s: expected error but got nil", tt.description)
			}

			// 全ての違反が単一のPlanShapeErrorとして返ること
			var planErr *PlanShapeError
			if !errors.As(err, &planErr) {
				t.Fatalf("%s: expected PlanShapeError, got %T: %v", tt.description, err, err)
			}

			// 診断のために生テキストを保持していること
			if planErr.Raw != tt.raw {
				t.Errorf("%s: expected raw text to be preserved", tt.description)
			}
		})
	}
}

// TestParsePlanOptionalBlocks tests that architecture / techStack blocks are
// accepted but not required
func TestParsePlanOptionalBlocks(t *testing.T) {
	raw := `{
		"projectSummary": "s",
		"architecture": {
			"overview": "Layered HTTP API",
			"style": "monolith",
			"modules": [{"name": "api", "responsibility": "HTTP handlers", "notes": ""}],
			"dataFlow": "request -> handler -> store"
		},
		"techStack": {
			"rationale": "Small team",
			"backend": ["Go"],
			"database": ["SQLite"]
		},
		"phases": []
	}`

	plan, err := ParsePlan(raw)
	if err != nil {
		t.Fatalf("Failed to parse plan with optional blocks: %v", err)
	}

	if plan.Architecture == nil {
		t.Fatal("Expected architecture block to be parsed")
	}
	if plan.Architecture.Style != "monolith" {
		t.Errorf("Expected architecture style monolith, got %q", plan.Architecture.Style)
	}
	if plan.TechStack == nil {
		t.Fatal("Expected techStack block to be parsed")
	}
	if len(plan.TechStack.Backend) != 1 || plan.TechStack.Backend[0] != "Go" {
		t.Errorf("Unexpected backend stack: %v", plan.TechStack.Backend)
	}

	// 空のフェーズ配列は有効であること
	if len(plan.Phases) != 0 {
		t.Errorf("Expected 0 phases, got %d", len(plan.Phases))
	}
}

// TestStripCodeFence tests the code fence normalization helper
func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"{}", "{}"},
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
		{"plain text", "plain text"},
	}

	for _, tt := range tests {
		if got := stripCodeFence(tt.input); got != tt.expected {
			t.Errorf("stripCodeFence(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}

	// フェンスだけの入力でもパニックしないこと
	if got := stripCodeFence("```"); strings.Contains(got, "\n") {
		t.Errorf("stripCodeFence(\"```\"): unexpected result %q", got)
	}
}
