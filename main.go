package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"whitespider/internal/config"
	"whitespider/internal/logging"
	"whitespider/internal/server"
)

func main() {
	if err := logging.Setup(""); err != nil {
		logrus.Fatalf("ログの設定に失敗しました: %v", err)
	}

	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// サーバーを作成
	srv, err := server.New(cfg)
	if err != nil {
		logrus.Fatalf("サーバーの作成に失敗しました: %v", err)
	}

	// ポートが使用中ならここで終了する
	if err := srv.Listen(); err != nil {
		logrus.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
	logging.Banner(os.Stdout, srv.Addr(), cfg.Static.Root)

	// サーバーを起動
	if err := srv.Start(context.Background()); err != nil {
		logrus.Fatalf("サーバーの実行に失敗しました: %v", err)
	}
}
