package status

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"httpdsharp/internal/config"
	"httpdsharp/internal/mimetype"
)

// Server はステータスエンドポイントを管理する構造体
type Server struct {
	config     *config.Config
	stats      *Stats
	instanceID string
	version    string
	mimeTypes  mimetype.Table
	engine     *gin.Engine
	httpServer *http.Server
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, stats *Stats, version string) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	// 検証済みの設定を前提とし、解析できない場合は空の表とする
	table, _ := cfg.MimeTable()

	s := &Server{
		config:     cfg,
		stats:      stats,
		instanceID: uuid.New().String(),
		version:    version,
		mimeTypes:  table,
		engine:     engine,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.StatusAddress(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/api/status", s.handleStatus)
}

// Handler はルーティング済みのhttp.Handlerを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// InstanceID はプロセスの起動ごとに採番されるIDを返す
func (s *Server) InstanceID() string {
	return s.instanceID
}

// Start はステータスエンドポイントを起動し、コンテキストが終了するまで待つ
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		log.Printf("ステータスエンドポイントを起動しています: %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ステータスエンドポイントの起動に失敗: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown はステータスエンドポイントをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ステータスエンドポイントのシャットダウンに失敗: %w", err)
	}
	return nil
}
