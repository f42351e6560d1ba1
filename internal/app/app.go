// Package app は設定からサーバー一式を組み立てて起動します。
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime/debug"

	"github.com/fatih/color"

	"httpdsharp/internal/config"
	"httpdsharp/internal/logger"
	"httpdsharp/internal/server"
	"httpdsharp/internal/status"
)

// Version はビルド情報から取得したバージョンを返す
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}

// PrintBanner は起動時の案内を表示する
func PrintBanner(w io.Writer, cfg *config.Config, logPath string) {
	title := color.New(color.FgCyan, color.Bold)
	_, _ = title.Fprintf(w, "httpdSharp %s\n", Version())
	fmt.Fprintf(w, "Using wwwroot: %s\n", cfg.Server.WWWRoot)
	fmt.Fprintf(w, "Logging to: %s\n", logPath)
	if cfg.Status.Enabled {
		fmt.Fprintf(w, "Status endpoint: http://%s/api/status\n", cfg.StatusAddress())
	}
	_, _ = color.New(color.FgGreen).Fprintf(w, "Webserver running on port %d. Press ^C to stop.\n", cfg.Server.Port)
}

// Run はサーバーを起動し、終了するまでブロックする
// ポートのバインドに失敗した場合はエラーを返し、配信は行わない
func Run(ctx context.Context, cfg *config.Config, console io.Writer) error {
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = logger.DefaultPath()
	}
	l := logger.New(logPath, console)
	stats := status.NewStats()

	srv, err := server.New(cfg, l, stats)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Status.Enabled {
		statusSrv := status.New(cfg, stats, Version())
		go func() {
			if err := statusSrv.Start(ctx); err != nil {
				log.Printf("ステータスエンドポイントが停止しました: %v", err)
			}
		}()
	}

	if err := srv.Listen(); err != nil {
		return err
	}
	PrintBanner(console, cfg, l.Path())

	return srv.Run(ctx)
}

// Fail は起動時の障害を表示する
func Fail(w io.Writer, err error) {
	_, _ = color.New(color.FgRed).Fprintf(w, "An unhandled exception occurred while starting: %v\n", err)
}
