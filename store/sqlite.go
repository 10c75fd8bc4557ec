// Package store は、データの永続化機能を提供します。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stsysd/keikaku/db"
	"github.com/stsysd/keikaku/model"
)

// UpdateTaskParams はタスクの部分更新パラメータです。
// nilのフィールドは更新されません。
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *int
	PhaseID     *int64
}

// IsEmpty は更新対象のフィールドが1つもないかを返します。
func (p *UpdateTaskParams) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.PhaseID == nil
}

// ProjectStore はプロジェクト集約の保存と取得を行うインターフェースです。
type ProjectStore interface {
	// CreateProject は新しい空のプロジェクトを作成します（フェーズなし）。
	CreateProject(ctx context.Context, project *model.Project) error
	// GetProject は指定されたIDのプロジェクトをフェーズ・タスク込みで取得します。
	GetProject(ctx context.Context, id int64) (*model.Project, error)
	// ListProjects はすべてのプロジェクトを作成日時の降順で取得します。
	ListProjects(ctx context.Context) ([]*model.Project, error)
	// ApplyPlan はプロジェクトのフェーズ・タスクを計画の内容でアトミックに置き換えます。
	ApplyPlan(ctx context.Context, projectID int64, plan *model.Plan) (*model.Project, error)
	// DeleteProject はプロジェクトとそのフェーズ・タスクを削除します。
	DeleteProject(ctx context.Context, id int64) error
}

// TaskStore はタスクの取得と更新を行うインターフェースです。
type TaskStore interface {
	// GetTask は指定されたIDのタスクを取得します。
	GetTask(ctx context.Context, id int64) (*model.Task, error)
	// UpdateTask は指定されたIDのタスクを部分更新します。
	UpdateTask(ctx context.Context, id int64, params *UpdateTaskParams) (*model.Task, error)
}

// Store は永続化レイヤー全体のインターフェースです。
type Store interface {
	ProjectStore
	TaskStore
	// Close はストアの接続を閉じます。
	Close() error
}

// SQLiteStore はSQLiteを使用したStoreの実装です。
type SQLiteStore struct {
	conn    *sql.DB
	queries *db.Queries
}

// NewSQLiteStore は新しいSQLiteStoreを作成します。
func NewSQLiteStore(dataDir string, migrate func(*sql.DB) error) (*SQLiteStore, error) {
	// データディレクトリの作成（存在しない場合）
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// SQLiteデータベースファイルのパス
	dbPath := filepath.Join(dataDir, "keikaku.db")

	// SQLiteデータベースへの接続
	// トランザクションは最初から書き込みロックを取得する（txlock=immediate）。
	// 遅延BEGINだと読み取り→書き込みのロック昇格でSQLITE_BUSYが即時に
	// 返り、busy_timeoutが効かないため、並行する書き込みが待ち行列に
	// 乗らずエラーになってしまう
	conn, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	// マイグレーションの実行
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{
		conn:    conn,
		queries: db.New(conn),
	}, nil
}

// Close はデータベース接続を閉じます。
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// CreateProject は新しいプロジェクトをデータベースに保存します。
// 保存成功時にはproject.IDに自動生成されたIDが設定されます。
func (s *SQLiteStore) CreateProject(ctx context.Context, project *model.Project) error {
	// バリデーション
	if err := project.Validate(); err != nil {
		return err
	}

	// 日時をRFC3339形式に統一して保存
	createdAtStr := project.CreatedAt.Format(time.RFC3339)

	// sqlcで生成されたクエリを使用
	id, err := s.queries.CreateProject(ctx, db.CreateProjectParams{
		Name:      project.Name,
		Idea:      project.Idea,
		DevSkills: project.DevSkills,
		CreatedAt: createdAtStr,
	})
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	project.ID = id
	return nil
}

// GetProject は指定されたIDのプロジェクトを取得します。
// フェーズはorder昇順、タスクは挿入順（ID昇順）でネストされます。
func (s *SQLiteStore) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	// sqlcで生成されたクエリを使用
	dbProject, err := s.queries.GetProject(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return s.hydrateProject(ctx, dbProject)
}

// hydrateProject はDB行からフェーズ・タスク込みのProjectを組み立てます。
func (s *SQLiteStore) hydrateProject(ctx context.Context, dbProject db.Project) (*model.Project, error) {
	// 文字列から時間に変換
	createdAt, err := time.Parse(time.RFC3339, dbProject.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	project, err := model.LoadProject(dbProject.ID, dbProject.Name, dbProject.Idea, dbProject.DevSkills, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	// フェーズの取得（order昇順）
	dbPhases, err := s.queries.ListPhasesByProject(ctx, dbProject.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list phases: %w", err)
	}

	for _, dbPhase := range dbPhases {
		phase, err := model.LoadPhase(dbPhase.ID, dbPhase.ProjectID, dbPhase.Name, int(dbPhase.Order))
		if err != nil {
			return nil, fmt.Errorf("failed to load phase: %w", err)
		}

		// タスクの取得（挿入順）
		dbTasks, err := s.queries.ListTasksByPhase(ctx, dbPhase.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		for _, dbTask := range dbTasks {
			task, err := loadTaskRow(dbTask)
			if err != nil {
				return nil, err
			}
			phase.Tasks = append(phase.Tasks, task)
		}

		project.Phases = append(project.Phases, phase)
	}

	return project, nil
}

// loadTaskRow はDB行からTaskモデルを組み立てます。
func loadTaskRow(dbTask db.Task) (*model.Task, error) {
	createdAt, err := time.Parse(time.RFC3339, dbTask.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse task created_at: %w", err)
	}
	task, err := model.LoadTask(dbTask.ID, dbTask.PhaseID, dbTask.Title, dbTask.Description,
		model.TaskStatus(dbTask.Status), int(dbTask.Priority), createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

// ListProjects はすべてのプロジェクトをフェーズ・タスク込みで取得します。
// 並び順は作成日時の降順です。
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	// sqlcで生成されたクエリを使用
	dbProjects, err := s.queries.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var projects []*model.Project
	for _, dbProject := range dbProjects {
		project, err := s.hydrateProject(ctx, dbProject)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// ApplyPlan はプロジェクトのフェーズ・タスクグラフ全体を計画の内容で
// アトミックに置き換えます。既存タスク・フェーズを削除した後、計画の
// 順序どおりにフェーズを作成し、タスクは優先度を序数値に変換して
// ステータスtodoで作成します。途中でエラーが発生した場合は全体が
// ロールバックされ、部分的な置き換えが観測されることはありません。
func (s *SQLiteStore) ApplyPlan(ctx context.Context, projectID int64, plan *model.Plan) (*model.Project, error) {
	if plan == nil {
		return nil, model.NewValidationError("plan is required")
	}

	// トランザクションの開始
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// トランザクションをロールバックするための遅延関数
	defer func() {
		if tx != nil {
			tx.Rollback() // 成功した場合は既にnilになっているためエラーは無視
		}
	}()

	// sqlcで生成されたクエリを使用（トランザクション内で）
	queriesWithTx := s.queries.WithTx(tx)

	// トランザクション内でプロジェクトの存在を再確認する
	// （並行する削除との競合を防ぐ）
	if _, err := queriesWithTx.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	// 既存のタスクを削除（フェーズより先に）
	if err := queriesWithTx.DeleteTasksByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to delete existing tasks: %w", err)
	}

	// 既存のフェーズを削除
	if err := queriesWithTx.DeletePhasesByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to delete existing phases: %w", err)
	}

	// 計画の順序どおりにフェーズ・タスクを作成
	now := time.Now().Format(time.RFC3339)
	for _, planPhase := range plan.Phases {
		phaseID, err := queriesWithTx.CreatePhase(ctx, db.CreatePhaseParams{
			ProjectID: projectID,
			Name:      planPhase.Name,
			Order:     int64(planPhase.Order),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create phase: %w", err)
		}

		for _, planTask := range planPhase.Tasks {
			// 意味的優先度を序数値に変換し、ステータスは常にtodoで作成する
			// （適用された計画は必ず新規状態から始まる）
			_, err := queriesWithTx.CreateTask(ctx, db.CreateTaskParams{
				PhaseID:     phaseID,
				Title:       planTask.Title,
				Description: planTask.Description,
				Status:      string(model.TaskStatusTodo),
				Priority:    int64(planTask.Priority.Ordinal()),
				CreatedAt:   now,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create task: %w", err)
			}
		}
	}

	// トランザクションのコミット
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil // コミットが成功したのでnilにして遅延関数でのロールバックを防ぐ

	// 置き換え後のプロジェクトを取得して返す
	return s.GetProject(ctx, projectID)
}

// DeleteProject は指定されたプロジェクトとそのフェーズ・タスクを削除します。
func (s *SQLiteStore) DeleteProject(ctx context.Context, id int64) error {
	// トランザクションの開始
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// トランザクションをロールバックするための遅延関数
	defer func() {
		if tx != nil {
			tx.Rollback() // 成功した場合は既にnilになっているためエラーは無視
		}
	}()

	// sqlcで生成されたクエリを使用（トランザクション内で）
	queriesWithTx := s.queries.WithTx(tx)

	// タスク→フェーズ→プロジェクトの順で削除
	if err := queriesWithTx.DeleteTasksByProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}
	if err := queriesWithTx.DeletePhasesByProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project phases: %w", err)
	}

	result, err := queriesWithTx.DeleteProject(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrProjectNotFound
	}

	// トランザクションのコミット
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil // コミットが成功したのでnilにして遅延関数でのロールバックを防ぐ

	return nil
}

// GetTask は指定されたIDのタスクを取得します。
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	dbTask, err := s.queries.GetTask(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return loadTaskRow(dbTask)
}

// UpdateTask は指定されたIDのタスクを部分更新します。
// ステータス・優先度は書き込み前に列挙値を検証し、違反はバリデーション
// エラーとして拒否します。存在しないタスクはErrTaskNotFoundを返します。
// 読み取り・マージ・書き込みを1つのトランザクションで行うため、並行する
// 部分更新が互いのフィールドを上書きすることはありません。
func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, params *UpdateTaskParams) (*model.Task, error) {
	if params == nil || params.IsEmpty() {
		return nil, model.NewValidationError("no fields to update")
	}

	// トランザクションの開始
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// トランザクションをロールバックするための遅延関数
	defer func() {
		if tx != nil {
			tx.Rollback() // 成功した場合は既にnilになっているためエラーは無視
		}
	}()

	// sqlcで生成されたクエリを使用（トランザクション内で）
	queriesWithTx := s.queries.WithTx(tx)

	// 更新前にタスクが存在するか確認
	dbTask, err := queriesWithTx.GetTask(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	existing, err := loadTaskRow(dbTask)
	if err != nil {
		return nil, err
	}

	// 更新用のタスクを既存タスクをベースに作成
	updated := *existing

	if params.Title != nil {
		updated.Title = *params.Title
	}
	if params.Description != nil {
		updated.Description = *params.Description
	}
	if params.Status != nil {
		// ステータスは列挙値のみ許可する
		status, err := model.ParseTaskStatus(*params.Status)
		if err != nil {
			return nil, err
		}
		updated.Status = status
	}
	if params.Priority != nil {
		if !model.IsValidOrdinal(*params.Priority) {
			return nil, model.NewValidationError(fmt.Sprintf("priority must be 1, 2 or 3, got %d", *params.Priority))
		}
		updated.Priority = *params.Priority
	}
	if params.PhaseID != nil {
		// 移動先フェーズの存在確認
		if _, err := queriesWithTx.GetPhase(ctx, *params.PhaseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, model.ErrPhaseNotFound
			}
			return nil, fmt.Errorf("failed to get phase: %w", err)
		}
		updated.PhaseID = *params.PhaseID
	}

	// 更新後の状態を検証
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	// sqlcで生成されたクエリを使用
	result, err := queriesWithTx.UpdateTask(ctx, db.UpdateTaskParams{
		Title:       updated.Title,
		Description: updated.Description,
		Status:      string(updated.Status),
		Priority:    int64(updated.Priority),
		PhaseID:     updated.PhaseID,
		ID:          id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// 更新された行数を確認
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, model.ErrTaskNotFound
	}

	// トランザクションのコミット
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil // コミットが成功したのでnilにして遅延関数でのロールバックを防ぐ

	return &updated, nil
}
