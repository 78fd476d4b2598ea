package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"whitespider/internal/config"
	"whitespider/internal/headers"
)

// Server は静的ファイルを配信するHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	headerSet  headers.Set
	logger     logrus.FieldLogger
	engine     *gin.Engine
	httpServer *http.Server

	mu           sync.Mutex
	listener     net.Listener
	shutdownOnce sync.Once
	shutdownErr  error
}

// Option はServerの生成オプション
type Option func(*Server)

// WithLogger はログ出力先を指定する
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	set, err := cfg.HeaderSet()
	if err != nil {
		return nil, fmt.Errorf("ヘッダー集合の作成に失敗: %w", err)
	}

	s := &Server{
		config:    cfg,
		headerSet: set,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// ドキュメントルートの外には出られない読み取り専用のファイルシステム
	root := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.Static.Root))

	s.engine = s.newEngine(newStaticHandler(root, cfg.Static))
	s.httpServer = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s, nil
}

// newEngine はginエンジンを組み立てる
func (s *Server) newEngine(h *staticHandler) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	engine.SetHTMLTemplate(listingTemplate)

	// ヘッダー付与は必ず最初に登録する
	engine.Use(headers.Middleware(s.headerSet), accessLog(s.logger), gin.Recovery())

	engine.GET("/*filepath", h.serve)
	engine.HEAD("/*filepath", h.serve)

	engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound)
	})
	// GET/HEAD以外のメソッドはサポートしない
	engine.NoMethod(func(c *gin.Context) {
		writeError(c, http.StatusNotImplemented)
	})

	return engine
}

// Handler はミドルウェアを含むHTTPハンドラを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr は実際にリッスンしているアドレスを返す。
// 起動前は設定上のアドレスを返す。
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ServerAddress()
}

// Listen はリスニングソケットを作成する。
// Startの前に呼ぶと、バインド失敗を配信開始前に検出できる。
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return fmt.Errorf("%s のリッスンに失敗: %w", s.config.ServerAddress(), err)
	}
	s.listener = ln
	return nil
}

// Start はサーバーを起動し、コンテキストのキャンセルかシグナルを受けるまでブロックする
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Serveが終了したら待機側も終わらせる
		defer cancel()

		s.logger.Infof("HTTPサーバーを起動しています: http://%s (root: %s)", s.Addr(), s.config.Static.Root)
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("サーバーの実行に失敗: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown()
	})

	return g.Wait()
}

// Shutdown はサーバーをシャットダウンする。複数回呼んでも安全。
func (s *Server) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.logger.Info("サーバーをシャットダウンしています...")

		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			// 待ちきれない接続は強制的に閉じる
			_ = s.httpServer.Close()
			if !errors.Is(err, context.DeadlineExceeded) {
				s.shutdownErr = fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
				return
			}
		}

		s.logger.Info("サーバーが正常にシャットダウンされました")
	})
	return s.shutdownErr
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.config.Server.ShutdownTimeout > 0 {
		return s.config.Server.ShutdownTimeout
	}
	return 5 * time.Second
}

// accessLog はリクエストごとにアクセスログを出力するミドルウェア
func accessLog(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"client":  c.ClientIP(),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"size":    c.Writer.Size(),
			"latency": time.Since(start),
		})
		if len(c.Errors) > 0 {
			entry.WithField("error", c.Errors.String()).Warn("request")
			return
		}
		entry.Info("request")
	}
}
