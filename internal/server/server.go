package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"httpdsharp/internal/config"
	"httpdsharp/internal/docroot"
)

// Server はTCPリスナーを管理する構造体
type Server struct {
	config     *config.Config
	handler    *Handler
	dispatcher Dispatcher
	log        Logger
	stats      Recorder

	mu       sync.Mutex
	listener net.Listener
}

// NewHandler は設定から接続ハンドラーを作成する
// stats が nil の場合は集計しない
func NewHandler(cfg *config.Config, l Logger, stats Recorder) (*Handler, error) {
	table, err := cfg.MimeTable()
	if err != nil {
		return nil, fmt.Errorf("MIMEタイプの解析に失敗: %w", err)
	}
	if stats == nil {
		stats = nopRecorder{}
	}

	return &Handler{
		resolver:    docroot.New(cfg.Server.WWWRoot, cfg.Server.DefaultDocument),
		mimeTypes:   table,
		log:         l,
		stats:       stats,
		readTimeout: cfg.Server.ReadTimeout,
		confine:     cfg.Server.ConfineToRoot,
	}, nil
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, l Logger, stats Recorder) (*Server, error) {
	if stats == nil {
		stats = nopRecorder{}
	}
	handler, err := NewHandler(cfg, l, stats)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:     cfg,
		handler:    handler,
		dispatcher: newDispatcher(cfg.Server.MaxWorkers),
		log:        l,
		stats:      stats,
	}, nil
}

// Listen は全インターフェース（またはHostで指定したアドレス）でポートをバインドする
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return fmt.Errorf("ポート %d のバインドに失敗: %w", s.config.Server.Port, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr はバインドしたアドレスを返す
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve はリスナーが閉じられるかコンテキストが終了するまで接続を受け付ける
// 受け付けに失敗しても記録してループを続ける
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("リスナーが起動していません")
	}
	defer s.dispatcher.Close()

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Debugf(" unhandled exception: %v", err)

			// 失敗が続く場合は net/http と同様に待ち時間を伸ばす
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.stats.Accepted()
		s.dispatcher.Dispatch(func() {
			s.handler.Handle(conn)
		})
	}
}

// Start はサーバーを起動し、コンテキストの終了かシグナルを受けるまで待つ
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Run(ctx)
}

// Run はListen済みのサーバーで接続を受け付け、コンテキストの終了かシグナルを受けるまで待つ
func (s *Server) Run(ctx context.Context) error {
	// 受け付けループを別ゴルーチンで起動
	serveCh := make(chan error, 1)
	go func() {
		serveCh <- s.Serve(ctx)
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		log.Println("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		log.Printf("シグナルを受信しました: %v", sig)
	case err := <-serveCh:
		return err
	}

	if err := s.Close(); err != nil {
		return err
	}
	return <-serveCh
}

// Close はリスナーを閉じる
// 処理中の接続は待たない
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
