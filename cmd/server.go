// Package main はhttpdSharpサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"httpdsharp/internal/app"
	"httpdsharp/internal/config"
)

func main() {
	// コマンドラインオプション
	var (
		configPath = flag.String("config", "", "設定ファイル (YAML または TOML, デフォルト: httpdsharp.yaml)")
		port       = flag.Int("port", 0, "サーバーのポート (デフォルト: 8080)")
		wwwroot    = flag.String("wwwroot", "", "ドキュメントルート (デフォルト: wwwroot)")
		help       = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("httpdSharp")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// 設定を読み込む
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// コマンドラインオプションで設定を上書き
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *wwwroot != "" {
		cfg.Server.WWWRoot = *wwwroot
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("設定の検証に失敗しました: %v", err)
	}

	// サーバーを起動
	if err := app.Run(context.Background(), cfg, os.Stdout); err != nil {
		app.Fail(os.Stdout, err)
		os.Exit(1)
	}
}
