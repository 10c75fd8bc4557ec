// Package api はkeikakuのAPIサーバー実装を提供します。
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/stsysd/keikaku/config"
	"github.com/stsysd/keikaku/model"
	"github.com/stsysd/keikaku/openai"
	"github.com/stsysd/keikaku/planner"
	"github.com/stsysd/keikaku/store"
)

// エラーカテゴリー - クライアントが機械的に判別できるエラー種別
const (
	categoryBadInput    = "bad_input"
	categoryNotFound    = "not_found"
	categoryUpstream    = "upstream_error"
	categoryInvalidPlan = "invalid_plan"
	categoryInternal    = "internal"
)

// Server はAPIサーバーの構造体です。
type Server struct {
	router  *http.ServeMux
	store   store.Store
	planner *planner.Service
	config  *config.Config
}

// ErrorResponse はエラーレスポンスの構造体です。
// Categoryは人間向けのErrorとは別に、機械的に判別できるエラー種別を
// 保持します。Rawは計画のスキーマ違反時に診断用の生テキストを返します。
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	Category  string `json:"category"`
	Raw       string `json:"raw,omitempty"`
	ProjectID int64  `json:"project_id,omitempty"`
}

// writeJSONError はJSON形式でエラーレスポンスを返却します。
func writeJSONError(w http.ResponseWriter, category, message string, statusCode int) {
	writeErrorResponse(w, &ErrorResponse{
		Error:    message,
		Code:     statusCode,
		Category: category,
	})
}

// writeErrorResponse はErrorResponseをそのまま返却します。
func writeErrorResponse(w http.ResponseWriter, resp *ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding error response: %v", err)
	}
}

// writeServiceError はサービス層のエラーをエラータクソノミーに従って
// HTTPレスポンスへマッピングします。
func writeServiceError(w http.ResponseWriter, err error) {
	resp := &ErrorResponse{}

	// プロジェクト作成後の部分的失敗の場合、作成済みIDを添えて返す
	// （プロジェクトは空のまま残っており、リトライ可能）
	target := err
	var partialErr *planner.PartialCreateError
	if errors.As(err, &partialErr) {
		resp.ProjectID = partialErr.ProjectID
		target = partialErr.Err
	}

	var validationErr *model.ValidationError
	var planErr *model.PlanShapeError
	var apiErr *openai.APIError

	switch {
	case errors.As(target, &validationErr):
		resp.Category = categoryBadInput
		resp.Code = http.StatusBadRequest
		resp.Error = target.Error()

	case errors.Is(target, model.ErrProjectNotFound),
		errors.Is(target, model.ErrPhaseNotFound),
		errors.Is(target, model.ErrTaskNotFound):
		resp.Category = categoryNotFound
		resp.Code = http.StatusNotFound
		resp.Error = target.Error()

	case errors.As(target, &planErr):
		// 生成AIの出力がスキーマに適合しない場合。生テキストを診断用に返す
		resp.Category = categoryInvalidPlan
		resp.Code = http.StatusBadGateway
		resp.Error = planErr.Error()
		resp.Raw = planErr.Raw

	case errors.As(target, &apiErr):
		// 上流サービスのステータスを可能な限りそのまま伝える
		resp.Category = categoryUpstream
		resp.Code = http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 600 {
			resp.Code = apiErr.StatusCode
		}
		resp.Error = fmt.Sprintf("generation service error: %s", apiErr.Message)

	default:
		log.Printf("Internal error: %v", err)
		resp.Category = categoryInternal
		resp.Code = http.StatusInternalServerError
		resp.Error = "internal server error"
	}

	writeErrorResponse(w, resp)
}

// NewServer は新しいAPIサーバーインスタンスを生成します。
func NewServer(st store.Store, svc *planner.Service, cfg *config.Config) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		store:   st,
		planner: svc,
		config:  cfg,
	}
	s.routes()
	return s
}

// routes はAPIエンドポイントのルーティングを設定します。
func (s *Server) routes() {
	// ヘルスチェックエンドポイント
	s.router.HandleFunc("GET /healthz", s.handleHealthCheck)

	apiHandler := http.NewServeMux()

	// Agent endpoints
	apiHandler.HandleFunc("POST /api/v0/draft-brief", s.handleDraftBrief)

	// Project endpoints
	apiHandler.HandleFunc("GET /api/v0/p", s.handleListProjects)
	apiHandler.HandleFunc("POST /api/v0/p/create-with-agents", s.handleCreateWithAgents)
	apiHandler.HandleFunc("GET /api/v0/p/{project_id}", s.handleGetProject)
	apiHandler.HandleFunc("DELETE /api/v0/p/{project_id}", s.handleDeleteProject)
	apiHandler.HandleFunc("POST /api/v0/p/{project_id}/apply-plan", s.handleApplyPlan)
	apiHandler.HandleFunc("POST /api/v0/p/{project_id}/replan", s.handleReplan)
	apiHandler.HandleFunc("POST /api/v0/p/{project_id}/risks", s.handleRisks)
	apiHandler.HandleFunc("POST /api/v0/p/{project_id}/spec", s.handleSpec)
	apiHandler.HandleFunc("POST /api/v0/p/{project_id}/doc-tex", s.handleDocTex)

	// Task endpoints
	apiHandler.HandleFunc("PATCH /api/v0/t/{task_id}", s.handleUpdateTask)

	// CORSミドルウェアを適用し、メインルータにマウント
	s.router.Handle("/api/", s.corsMiddleware(apiHandler))
}

// ServeHTTP はServer構造体をhttp.Handlerとして実装します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealthCheck はヘルスチェックエンドポイントのハンドラーです。
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := map[string]string{"status": "ok"}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// DraftBriefParams represents parameters for brief generation.
type DraftBriefParams struct {
	Input *planner.DraftBriefInput
}

// NewDraftBriefParams creates parameters for brief generation from HTTP request.
func NewDraftBriefParams(r *http.Request) (*DraftBriefParams, error) {
	var requestBody struct {
		Name      string `json:"name"`
		Idea      string `json:"idea"`
		TeamSize  string `json:"team_size"`
		Timeframe string `json:"timeframe"`
		DevSkills string `json:"dev_skills"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	return &DraftBriefParams{
		Input: &planner.DraftBriefInput{
			Name:      requestBody.Name,
			Idea:      requestBody.Idea,
			TeamSize:  requestBody.TeamSize,
			Timeframe: requestBody.Timeframe,
			DevSkills: requestBody.DevSkills,
		},
	}, nil
}

// handleDraftBrief はブリーフ生成エンドポイントのハンドラーです。
func (s *Server) handleDraftBrief(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewDraftBriefParams(r)
	if err != nil {
		writeJSONError(w, categoryBadInput, err.Error(), http.StatusBadRequest)
		return
	}

	// ブリーフの生成
	brief, err := s.planner.DraftBrief(r.Context(), params.Input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// レスポンスの返却
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{"brief": brief}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// ListProjectsResponse はプロジェクト一覧取得のレスポンスです。
type ListProjectsResponse struct {
	Items []*model.Project `json:"items"`
}

// handleListProjects はプロジェクト一覧取得をハンドリングします。
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	// プロジェクトの取得（作成日時の降順、フェーズ・タスク込み）
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		log.Printf("Error retrieving projects: %v", err)
		writeJSONError(w, categoryInternal, "Failed to retrieve projects", http.StatusInternalServerError)
		return
	}

	// レスポンスの構築
	response := &ListProjectsResponse{Items: projects}
	// 空配列を返すためにnilチェック
	if response.Items == nil {
		response.Items = []*model.Project{}
	}

	// レスポンスの返却
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// CreateWithAgentsParams represents parameters for agent-driven project creation.
type CreateWithAgentsParams struct {
	Input *planner.CreateProjectInput
}

// NewCreateWithAgentsParams creates parameters for project creation from HTTP request.
func NewCreateWithAgentsParams(r *http.Request) (*CreateWithAgentsParams, error) {
	var requestBody struct {
		Name      string `json:"name"`
		Brief     string `json:"brief"`
		Idea      string `json:"idea"`
		TeamSize  string `json:"team_size"`
		Timeframe string `json:"timeframe"`
		DevSkills string `json:"dev_skills"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	return &CreateWithAgentsParams{
		Input: &planner.CreateProjectInput{
			Name:      requestBody.Name,
			Brief:     requestBody.Brief,
			Idea:      requestBody.Idea,
			TeamSize:  requestBody.TeamSize,
			Timeframe: requestBody.Timeframe,
			DevSkills: requestBody.DevSkills,
		},
	}, nil
}

// ProjectResponse はプロジェクトと計画メタデータのレスポンスです。
type ProjectResponse struct {
	Project  *model.Project `json:"project"`
	PlanMeta *model.Plan    `json:"plan_meta,omitempty"`
}

// handleCreateWithAgents はエージェントによるプロジェクト作成を
// ハンドリングします。ブリーフから計画を生成し、検証・永続化した上で
// 完全なプロジェクトを返します。
func (s *Server) handleCreateWithAgents(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewCreateWithAgentsParams(r)
	if err != nil {
		writeJSONError(w, categoryBadInput, err.Error(), http.StatusBadRequest)
		return
	}

	// 生成・検証・永続化の合成フローを実行
	project, plan, err := s.planner.CreateWithAgents(r.Context(), params.Input)
	if err != nil {
		// 生成失敗時もプロジェクト行は残っている（部分的成功として文書化済み）
		writeServiceError(w, err)
		return
	}

	// レスポンスの返却
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&ProjectResponse{Project: project, PlanMeta: plan}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// GetProjectParams represents parameters for getting project info.
type GetProjectParams struct {
	ProjectID int64
}

// NewGetProjectParams creates parameters for project retrieval from HTTP request.
func NewGetProjectParams(r *http.Request) (*GetProjectParams, error) {
	projectID, err := model.ParseID(r.PathValue("project_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid project_id: %w", err)
	}

	return &GetProjectParams{
		ProjectID: projectID,
	}, nil
}

// handleGetProject はプロジェクト取得をハンドリングします。
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewGetProjectParams(r)
	if err != nil {
		writeJSONError(w, categoryBadInput, err.Error(), http.StatusBadRequest)
		return
	}

	// プロジェクトの取得
	project, err := s.store.GetProject(r.Context(), params.ProjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// レスポンスの返却
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(&ProjectResponse{Project: project}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// handleDeleteProject はプロジェクト削除をハンドリングします。
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewGetProjectParams(r)
	if err != nil {
		writeJSONError(w, categoryBadInput, err.Error(), http.StatusBadRequest)
		return
	}

	// プロジェクト削除の実行（フェーズ・タスクも連鎖削除される）
	if err := s.store.DeleteProject(r.Context(), params.ProjectID); err != nil {
		writeServiceError(w, err)
		return
	}

	// 成功した場合は204 No Contentを返す
	w.WriteHeader(http.StatusNoContent)
}

// ApplyPlanParams represents parameters for applying a generated plan.
type ApplyPlanParams struct {
	ProjectID int64
	Plan      *model.Plan
}

// NewApplyPlanParams creates parameters for plan application from HTTP request.
func NewApplyPlanParams(r *http.Request) (*ApplyPlanParams, error) {
	projectID, err := model.ParseID(r.PathValue("project_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid project_id: %w", err)
	}

	var requestBody struct {
		Plan json.RawMessage `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if len(requestBody.Plan) == 0 {
		return nil, fmt.Errorf("field 'plan' is required")
	}

	// 提出された計画もスキーマバリデーションを通す
	// （クライアント側で編集された可能性があるため）
	plan, err := model.ParsePlan(string(requestBody.Plan))
	if err != nil {
		return nil, err
	}

	return &ApplyPlanParams{
		ProjectID: projectID,
		Plan:      plan,
	}, nil
}

// handleApplyPlan は計画の適用（フェーズ・タスクのアトミックな置き換え）を
// ハンドリングします。
func (s *Server) handleApplyPlan(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewApplyPlanParams(r)
	if err != nil {
		// 計画のスキーマ違反もリクエスト不正として扱う
		var planErr *model.PlanShapeError
		if errors.As(err, &planErr) {
			writeErrorResponse(w, &ErrorResponse{
				Error:    planErr.Error(),
				Code:     http.StatusBadRequest,
				Category: categoryInvalidPlan,
				Raw:      planErr.Raw,
			})
			return
		}
		writeJSONError(w, categoryBadInput, err.Error(), http.StatusBadRequest)
		return
	}

	// 計画の適用
	project, err := s.store.ApplyPlan(r.Context(), params.ProjectID, params.Plan)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// レスポンスの返却
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(&ProjectResponse{Project: project, PlanMeta: params.Plan}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// handleReplan は現在のプロジェクト状態からの計画再生成をハンドリング
// します。候補計画を返すだけで、ストアへの書き込みは行いません。
func (s *Server) handleReplan(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewGetProjectParams(r)
	if err != nil {
		writeJSONError(w, categoryBadInput, err.Error(), http.StatusBadRequest)
		return
	}

	// 候補計画の生成（プレビュー専用）
	plan, err := s.planner.Replan(r.Context(), params.ProjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// レスポンスの返却
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]*model.Plan{"plan": plan}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// handleRisks はリスク分析生成をハンドリングします。
func (s *Server) handleRisks(w http.ResponseWriter, r *http.Request) {
	s.handleFreeText(w, r, "risks", s.planner.Risks)
}

// handleSpec は技術仕様生成をハンドリングします。
func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	s.handleFreeText(w, r, "spec", s.planner.Spec)
}

// handleDocTex はLaTeXドキュメント生成をハンドリングします。
func (s *Server) handleDocTex(w http.ResponseWriter, r *http.Request) {
	s.handleFreeText(w, r, "tex", s.planner.DocTex)
}

// handleFreeText は自由テキスト生成エンドポイントの共通ハンドラーです。
// 生成されたテキストを指定のキーでJSONとして返します。
func (s *Server) handleFreeText(w http.ResponseWriter, r *http.Request, key string, generate func(ctx context.Context, projectID int64) (string, error)) {
	// パラメータを検証
	params, err := NewGetProjectParams(r)
	if err != nil {
		writeJSONError(w, categoryBadInput, err.Error(), http.StatusBadRequest)
		return
	}

	// テキストの生成
	text, err := generate(r.Context(), params.ProjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// レスポンスの返却
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{key: text}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// UpdateTaskParams represents parameters for updating a task.
type UpdateTaskParams struct {
	TaskID int64
	Fields *store.UpdateTaskParams
}

// NewUpdateTaskParams creates parameters for task update from HTTP request.
func NewUpdateTaskParams(r *http.Request) (*UpdateTaskParams, error) {
	taskID, err := model.ParseID(r.PathValue("task_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid task_id: %w", err)
	}

	// 部分更新をサポートするためポインタ型を使用
	var requestBody struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Priority    *int    `json:"priority"`
		PhaseID     *int64  `json:"phase_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	return &UpdateTaskParams{
		TaskID: taskID,
		Fields: &store.UpdateTaskParams{
			Title:       requestBody.Title,
			Description: requestBody.Description,
			Status:      requestBody.Status,
			Priority:    requestBody.Priority,
			PhaseID:     requestBody.PhaseID,
		},
	}, nil
}

// handleUpdateTask はタスクの部分更新をハンドリングします。
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewUpdateTaskParams(r)
	if err != nil {
		writeJSONError(w, categoryBadInput, err.Error(), http.StatusBadRequest)
		return
	}

	// タスクの更新
	task, err := s.store.UpdateTask(r.Context(), params.TaskID, params.Fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// レスポンスの返却
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]*model.Task{"task": task}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Run はサーバーを指定されたアドレスで起動します。
func (s *Server) Run(addr string) error {
	log.Printf("Server starting on %s", addr)
	return http.ListenAndServe(addr, s)
}
