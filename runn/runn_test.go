package runn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/k1LoW/runn"
	"github.com/stsysd/keikaku/api"
	"github.com/stsysd/keikaku/config"
	"github.com/stsysd/keikaku/db"
	"github.com/stsysd/keikaku/openai"
	"github.com/stsysd/keikaku/planner"
	"github.com/stsysd/keikaku/store"
)

// fakePlanJSON はフェイクOpenAIバックエンドが返す計画です。
const fakePlanJSON = `{
  "projectSummary": "A habit tracking app for small teams.",
  "phases": [
    {
      "name": "Phase 1: Foundation",
      "order": 1,
      "tasks": [
        {"title": "Set up repository", "description": "Repo and CI", "priority": "high", "estimateHours": 4},
        {"title": "Design data model", "description": "Entities", "priority": "medium", "estimateHours": 6}
      ]
    },
    {
      "name": "Phase 2: Features",
      "order": 2,
      "tasks": [
        {"title": "Build habit list UI", "description": "List view", "priority": "low", "estimateHours": 8}
      ]
    }
  ]
}`

// newFakeOpenAI はOpenAI互換のフェイクバックエンドを起動します。
// システムプロンプトを見てモードを判別し、決定的な応答を返します。
func newFakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		content := "Generated analysis text."
		for _, msg := range req.Messages {
			if msg.Role != "system" {
				continue
			}
			switch {
			case strings.Contains(msg.Content, "product assistant"):
				content = "# Project Brief\n\nA short generated brief."
			case strings.Contains(msg.Content, "project planner"):
				content = fakePlanJSON
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRouter(t *testing.T) {
	fake := newFakeOpenAI(t)

	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("KEIKAKU_DATA_DIR", "./testdata")
	os.Setenv("KEIKAKU_OPENAI_BASE_URL", fake.URL)

	if err := os.RemoveAll("./testdata"); err != nil {
		t.Fatalf("Failed to clean test data dir: %v", err)
	}

	// 設定の読み込み
	cfg := config.NewConfig()

	// SQLiteストアの初期化（マイグレーション関数を渡す）
	sqliteStore, err := store.NewSQLiteStore(cfg.DataDir, db.Migrate)
	if err != nil {
		t.Fatalf("Failed to initialize SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	// 生成AIクライアント（フェイクバックエンドに向ける）
	llm := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	})

	// サーバーインスタンスの作成
	server := api.NewServer(sqliteStore, planner.NewService(sqliteStore, llm), cfg)

	ctx := context.Background()
	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
	})
	opts := []runn.Option{
		runn.T(t),
		runn.Runner("req", ts.URL),
	}
	o, err := runn.Load("./**/*.yml", opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.RunN(ctx); err != nil {
		t.Fatal(err)
	}
}
