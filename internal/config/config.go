package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"httpdsharp/internal/mimetype"
)

// DefaultConfigFile は設定ファイルの既定のパス
const DefaultConfigFile = "httpdsharp.yaml"

// DefaultMimeTypes は既定の拡張子とMIMEタイプの対応表
const DefaultMimeTypes = ".html|text/html;.htm|text/html;.txt|text/plain;.css|text/css;" +
	".js|application/javascript;.json|application/json;.xml|text/xml;" +
	".gif|image/gif;.jpg|image/jpeg;.jpeg|image/jpeg;.png|image/png;.ico|image/x-icon;" +
	".svg|image/svg+xml;.pdf|application/pdf;.zip|application/zip"

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Log    LogConfig    `yaml:"log" toml:"log"`
	Status StatusConfig `yaml:"status" toml:"status"`
}

// ServerConfig は静的コンテンツサーバーの設定
type ServerConfig struct {
	Host            string `yaml:"host" toml:"host"`                       // リッスンするホスト（空なら全インターフェース）
	Port            int    `yaml:"port" toml:"port"`                       // リッスンするポート番号
	WWWRoot         string `yaml:"wwwroot" toml:"wwwroot"`                 // ドキュメントルート
	DefaultDocument string `yaml:"defaultdocument" toml:"defaultdocument"` // "/" に対して返すファイル名
	MimeTypes       string `yaml:"mimetypes" toml:"mimetypes"`             // "ext|type;ext|type" 形式の対応表

	// 以下はいずれも既定で無効
	ReadTimeout   time.Duration `yaml:"read_timeout" toml:"read_timeout"`       // 接続ごとの読み込み期限
	MaxWorkers    int           `yaml:"max_workers" toml:"max_workers"`         // 0なら接続ごとにゴルーチンを起動
	ConfineToRoot bool          `yaml:"confine_to_root" toml:"confine_to_root"` // ルート外へのパスを404にする
}

// LogConfig はログ出力の設定
type LogConfig struct {
	File string `yaml:"file" toml:"file"` // 空なら実行ファイルと同じディレクトリの httpdSharp.log
}

// StatusConfig はステータスエンドポイントの設定
type StatusConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Host    string `yaml:"host" toml:"host"`
	Port    int    `yaml:"port" toml:"port"`
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			WWWRoot:         "wwwroot",
			DefaultDocument: "index.html",
			MimeTypes:       DefaultMimeTypes,
		},
		Status: StatusConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8081,
		},
	}
}

// Load は設定を読み込む
// path が空の場合は HTTPD_CONFIG、それもなければ DefaultConfigFile を使い、
// 既定のファイルが存在しなければデフォルト値のみで続行する
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = getEnvOrDefault("HTTPD_CONFIG", DefaultConfigFile)
		explicit = os.Getenv("HTTPD_CONFIG") != ""
	}

	if err := cfg.decodeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	cfg.applyEnv()

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// decodeFile は拡張子に応じてYAMLかTOMLとして読み込む
func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)
	c.Server.WWWRoot = getEnvOrDefault("WWWROOT", c.Server.WWWRoot)
	c.Server.DefaultDocument = getEnvOrDefault("DEFAULT_DOCUMENT", c.Server.DefaultDocument)
	c.Server.MimeTypes = getEnvOrDefault("MIME_TYPES", c.Server.MimeTypes)
	c.Log.File = getEnvOrDefault("LOG_FILE", c.Log.File)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.WWWRoot == "" {
		return errors.New("wwwroot が設定されていません")
	}
	if c.Server.DefaultDocument == "" {
		return errors.New("defaultdocument が設定されていません")
	}
	if _, err := c.MimeTable(); err != nil {
		return err
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("無効な読み込みタイムアウト: %s", c.Server.ReadTimeout)
	}
	if c.Server.MaxWorkers < 0 {
		return fmt.Errorf("無効なワーカー数: %d", c.Server.MaxWorkers)
	}

	// ステータスエンドポイントの検証
	if c.Status.Enabled {
		if c.Status.Port < 1 || c.Status.Port > 65535 {
			return fmt.Errorf("無効なステータスポート番号: %d", c.Status.Port)
		}
		if c.Status.Port == c.Server.Port {
			return fmt.Errorf("ステータスポートがサーバーポートと重複しています: %d", c.Status.Port)
		}
	}

	return nil
}

// MimeTable はMIMEタイプの対応表を解析して返す
func (c *Config) MimeTable() (mimetype.Table, error) {
	return mimetype.ParseTable(c.Server.MimeTypes)
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// StatusAddress はステータスエンドポイントのリッスンアドレスを返す
func (c *Config) StatusAddress() string {
	return fmt.Sprintf("%s:%d", c.Status.Host, c.Status.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
