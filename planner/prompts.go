// Package planner は、生成AI呼び出し・検証・永続化を合成する
// オーケストレーターを提供します。
package planner

import (
	"fmt"
	"strings"

	"github.com/stsysd/keikaku/model"
)

// プロンプトモードごとのシステムプロンプト
const (
	briefSystemPrompt   = "You are a product assistant."
	plannerSystemPrompt = "You are an AI project planner."
	analystSystemPrompt = "You are a senior software project analyst."
)

// planJSONContract は計画生成モードで要求するJSONコントラクトです。
// architecture / techStack は拡張ブロックで、バリデーションでは任意
// 扱いになります。
const planJSONContract = `Return ONLY a valid JSON object with this exact shape:

{
  "projectSummary": string,
  "architecture": {
    "overview": string,
    "style": string,
    "modules": [{ "name": string, "responsibility": string, "notes": string }],
    "dataFlow": string
  },
  "techStack": {
    "rationale": string,
    "backend": [string],
    "frontend": [string],
    "database": [string],
    "infrastructure": [string],
    "testingAndTooling": [string]
  },
  "phases": [
    {
      "name": string,
      "order": number,
      "goal": string,
      "tasks": [
        {
          "title": string,
          "description": string,
          "priority": "low" | "medium" | "high",
          "estimateHours": number
        }
      ]
    }
  ]
}

Rules:
- Do NOT add any extra keys.
- Do NOT add comments or explanations.
- Do NOT wrap JSON in backticks.
- Keep text concise but clear.`

// orNA は空文字列を"N/A"に置き換えます。
func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// orUnknown は空文字列を"unknown"に置き換えます。
func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// buildDraftBriefPrompt はdraft-briefモードのプロンプトを構築します。
func buildDraftBriefPrompt(in *DraftBriefInput) string {
	return fmt.Sprintf(`Draft a short, clear software project brief.

Include sections:
- Problem
- Proposed solution
- Target users
- Constraints (team size, timeframe, developer skills)
- 3-5 high-level goals as bullet points

Use markdown. Maximum 250-300 words.

Base information:
- Name: %s
- Idea: %s
- Team size: %s
- Timeframe: %s
- Developer skills: %s`,
		orNA(in.Name), in.Idea, orNA(in.TeamSize), orNA(in.Timeframe), orNA(in.DevSkills))
}

// buildPlanFromBriefPrompt はplan-from-briefモードのプロンプトを構築します。
func buildPlanFromBriefPrompt(in *CreateProjectInput) string {
	return fmt.Sprintf(`The user has written and approved the following project brief:

---
%s
---

Team size: %s
Timeframe: %s
Developer skills: %s

Based on this brief, create a structured implementation plan.

%s`,
		in.Brief, orUnknown(in.TeamSize), orUnknown(in.Timeframe), orUnknown(in.DevSkills), planJSONContract)
}

// buildReplanPrompt はreplanモードのプロンプトを構築します。
// 現在のDB状態のスナップショットをコンテキストとして渡します。
func buildReplanPrompt(project *model.Project) string {
	return fmt.Sprintf(`The user has an existing software project with the current state below:

%s

Re-plan this project from its current state. Keep what is working,
restructure what is not, and produce a complete replacement plan.

%s`,
		formatSnapshot(project), planJSONContract)
}

// buildRisksPrompt はリスク分析モードのプロンプトを構築します。
func buildRisksPrompt(project *model.Project) string {
	return fmt.Sprintf(`Analyze the following software project and identify its main risks.

%s

List technical, planning and team risks with a short mitigation for each.
Use markdown. Do not return JSON.`,
		formatSnapshot(project))
}

// buildSpecPrompt は技術仕様モードのプロンプトを構築します。
func buildSpecPrompt(project *model.Project) string {
	return fmt.Sprintf(`Write a concise technical specification for the following software project.

%s

Include: overview, functional requirements, non-functional requirements,
and suggested milestones. Use markdown. Do not return JSON.`,
		formatSnapshot(project))
}

// buildDocTexPrompt はLaTeXドキュメント生成モードのプロンプトを構築します。
func buildDocTexPrompt(project *model.Project) string {
	return fmt.Sprintf(`Generate project documentation for the following software project
as a complete LaTeX document.

%s

Return ONLY valid LaTeX source, starting with \documentclass.
Do not wrap the output in backticks.`,
		formatSnapshot(project))
}

// formatSnapshot はプロジェクトの現在状態をプロンプト用のテキストに
// 整形します。優先度は表示用ラベル（High/Medium/Low）で出力します。
func formatSnapshot(project *model.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", project.Name)
	fmt.Fprintf(&b, "Idea / brief: %s\n", orNA(project.Idea))
	fmt.Fprintf(&b, "Developer skills: %s\n", orNA(project.DevSkills))

	if len(project.Phases) == 0 {
		b.WriteString("Current plan: (no phases yet)\n")
		return b.String()
	}

	b.WriteString("Current plan:\n")
	for _, phase := range project.Phases {
		fmt.Fprintf(&b, "- Phase %d: %s\n", phase.Order, phase.Name)
		for _, task := range phase.Tasks {
			fmt.Fprintf(&b, "  - [%s] %s (priority: %s)",
				task.Status, task.Title, model.PriorityLabel(task.Priority))
			if task.Description != "" {
				fmt.Fprintf(&b, " - %s", task.Description)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
