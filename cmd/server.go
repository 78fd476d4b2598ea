// Package main はWhiteSpider開発サーバーのコマンドラインの実装です
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"whitespider/internal/config"
	"whitespider/internal/headers"
	"whitespider/internal/logging"
	"whitespider/internal/server"
)

// options はコマンドラインオプション
type options struct {
	host       string
	port       int
	root       string
	preset     string
	configFile string
	noList     bool
	headers    []string
	logLevel   string
}

func main() {
	if err := newCommand(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "静的アセットをセキュリティヘッダー付きで配信する開発サーバー",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd, opts)
			if err != nil {
				logrus.Error(err)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.host, "host", "", "サーバーのホスト (デフォルト: 127.0.0.1)")
	f.IntVar(&opts.port, "port", 0, "サーバーのポート (デフォルト: 8000)")
	f.StringVar(&opts.root, "root", "", "ドキュメントルート (デフォルト: ./static)")
	f.StringVar(&opts.preset, "preset", "", fmt.Sprintf("ヘッダープリセット (%s)", strings.Join(headers.PresetNames(), ", ")))
	f.StringVarP(&opts.configFile, "config", "c", "", "YAML設定ファイル")
	f.BoolVar(&opts.noList, "no-list", false, "ディレクトリ一覧を無効にする")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "追加するヘッダー (Name=Value、複数指定可)")
	f.StringVar(&opts.logLevel, "log-level", "", "ログレベル (debug, info, warn, error)")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	if err := logging.Setup(opts.logLevel); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}
	logging.Banner(cmd.OutOrStdout(), srv.Addr(), cfg.Static.Root)

	return srv.Start(cmd.Context())
}

// loadConfig は設定を読み込み、コマンドラインオプションで上書きする
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Read(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = opts.port
	}
	if opts.root != "" {
		cfg.Static.Root = opts.root
	}
	if opts.preset != "" {
		cfg.Headers.Preset = opts.preset
	}
	if opts.noList {
		cfg.Static.ListDirectory = false
	}
	for _, kv := range opts.headers {
		h, err := headers.Parse(kv)
		if err != nil {
			return nil, err
		}
		cfg.Headers.Extra = append(cfg.Headers.Extra, h)
	}

	// 上書き後の値で再検証する
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}
