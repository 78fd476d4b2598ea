// Package logging はlogrusとginのログ設定をまとめます。
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Setup は標準ロガーを設定する。
// levelが空の場合は環境変数LOG_LEVEL、それも空ならinfoを使う。
func Setup(level string) error {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = logrus.InfoLevel.String()
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("無効なログレベル: %w", err)
	}

	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// ginのデバッグ出力はdebugレベルのときだけ
	if lvl >= logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}

// Banner は起動時の案内を出力する
func Banner(w io.Writer, addr, root string) {
	url := color.New(color.FgCyan, color.Bold).Sprintf("http://%s/", addr)
	fmt.Fprintf(w, "Serving %s at %s\n", root, url)
	fmt.Fprintln(w, "Press Ctrl+C to stop")
}
