package main

import (
	"log"

	"github.com/stsysd/keikaku/api"
	"github.com/stsysd/keikaku/config"
	"github.com/stsysd/keikaku/db"
	"github.com/stsysd/keikaku/openai"
	"github.com/stsysd/keikaku/planner"
	"github.com/stsysd/keikaku/store"
)

func main() {
	// 設定の読み込み
	cfg := config.NewConfig()

	// ストアの初期化（マイグレーション込み）
	st, err := store.NewSQLiteStore(cfg.DataDir, db.Migrate)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// 生成AIクライアントの初期化
	llm := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	})

	// プランナーサービスの初期化
	svc := planner.NewService(st, llm)

	// サーバーの起動
	server := api.NewServer(st, svc, cfg)
	log.Fatal(server.Run(":" + cfg.Port))
}
