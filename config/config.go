// Package config はアプリケーション設定を管理します。
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// データディレクトリのパス
	DataDir string

	// HTTPサーバーのポート
	Port string

	// OpenAI APIキー
	OpenAIAPIKey string

	// OpenAI APIのベースURL（テストでスタブに差し替え可能）
	OpenAIBaseURL string

	// 生成に使用するモデル
	OpenAIModel string

	// 生成呼び出しのタイムアウト
	OpenAITimeout time.Duration
}

// NewConfig は環境変数から設定を読み込み、Configインスタンスを生成します。
func NewConfig() *Config {
	// データディレクトリの設定
	dataDir := os.Getenv("KEIKAKU_DATA_DIR")
	if dataDir == "" {
		dataDir = filepath.Join(".", "data")
	}

	// ポートの設定
	port := os.Getenv("KEIKAKU_SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	// OpenAI APIキーの設定
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		// デフォルトキーは設定しない
		panic("OPENAI_API_KEY is not set")
	}

	// モデルの設定
	model := os.Getenv("KEIKAKU_OPENAI_MODEL")
	if model == "" {
		model = "gpt-5.1"
	}

	// タイムアウトの設定（秒）
	timeout := 120 * time.Second
	if timeoutStr := os.Getenv("KEIKAKU_OPENAI_TIMEOUT"); timeoutStr != "" {
		if seconds, err := strconv.Atoi(timeoutStr); err == nil && seconds > 0 {
			timeout = time.Duration(seconds) * time.Second
		}
	}

	return &Config{
		DataDir:       dataDir,
		Port:          port,
		OpenAIAPIKey:  apiKey,
		OpenAIBaseURL: os.Getenv("KEIKAKU_OPENAI_BASE_URL"),
		OpenAIModel:   model,
		OpenAITimeout: timeout,
	}
}
