package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"whitespider/internal/headers"
)

// ErrInvalidConfig は設定の検証に失敗した場合のエラー
var ErrInvalidConfig = errors.New("invalid config")

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Static  StaticConfig  `yaml:"static"`
	Headers HeadersConfig `yaml:"headers"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host"` // リッスンするホスト
	Port int    `yaml:"port"` // リッスンするポート番号 (0 は空きポート)

	// タイムアウト設定
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // 読み込みタイムアウト
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // 書き込みタイムアウト
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // シャットダウン待ち時間
}

// StaticConfig は静的ファイル配信の設定
type StaticConfig struct {
	Root          string   `yaml:"root"`           // ドキュメントルート
	ListDirectory bool     `yaml:"list_directory"` // ディレクトリ一覧を生成するか
	IndexFiles    []string `yaml:"index_files"`    // ディレクトリアクセス時に探すファイル
}

// HeadersConfig は付与するヘッダーの設定
type HeadersConfig struct {
	Preset string      `yaml:"preset"` // プリセット名
	Extra  headers.Set `yaml:"extra"`  // 追加・上書きするヘッダー
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Static: StaticConfig{
			Root:          "static",
			ListDirectory: true,
			IndexFiles:    []string{"index.html", "index.htm"},
		},
		Headers: HeadersConfig{
			Preset: headers.DefaultPreset,
		},
	}
}

// Load は設定を読み込み、検証する。
// デフォルト値、設定ファイル (CONFIG_FILE)、.env、環境変数の順に上書きする。
func Load() (*Config, error) {
	cfg, err := Read("")
	if err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read はLoadと同じ順序で設定を読み込むが、検証は行わない。
// pathが空の場合は環境変数CONFIG_FILEの設定ファイルを使う。
// 呼び出し側で値を上書きした後にFinalizeを呼ぶこと。
func Read(path string) (*Config, error) {
	// .env は存在しなくてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".envの読み込みに失敗: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFile はYAML設定ファイルの内容をcfgに上書きする
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗 (%s): %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)
	c.Static.Root = getEnvOrDefault("DOCUMENT_ROOT", c.Static.Root)
	c.Static.ListDirectory = getEnvAsBoolOrDefault("DIRECTORY_LISTING", c.Static.ListDirectory)
	c.Headers.Preset = getEnvOrDefault("HEADER_PRESET", c.Headers.Preset)
}

// Finalize はドキュメントルートを絶対パスに解決し、設定を検証する。
// フラグ等で値を変更した後にも呼び出すこと。
func (c *Config) Finalize() error {
	root, err := homedir.Expand(c.Static.Root)
	if err != nil {
		return fmt.Errorf("ドキュメントルートの展開に失敗: %w", err)
	}
	if root != "" {
		if root, err = filepath.Abs(root); err != nil {
			return fmt.Errorf("ドキュメントルートの解決に失敗: %w", err)
		}
	}
	c.Static.Root = root

	if err := c.Validate(); err != nil {
		return fmt.Errorf("設定の検証に失敗: %w", err)
	}
	return nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: 無効なポート番号: %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Static.Root == "" {
		return fmt.Errorf("%w: ドキュメントルートが指定されていません", ErrInvalidConfig)
	}

	info, err := os.Stat(c.Static.Root)
	if err != nil {
		return fmt.Errorf("%w: ドキュメントルートにアクセスできません: %v", ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: ドキュメントルートがディレクトリではありません: %s", ErrInvalidConfig, c.Static.Root)
	}

	if _, err := c.HeaderSet(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// HeaderSet はプリセットと追加ヘッダーから最終的なヘッダー集合を組み立てる
func (c *Config) HeaderSet() (headers.Set, error) {
	set, err := headers.Preset(c.Headers.Preset)
	if err != nil {
		return nil, err
	}
	set = set.Merge(c.Headers.Extra)
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
