package main

import (
	"context"
	"log"
	"os"

	"httpdsharp/internal/app"
	"httpdsharp/internal/config"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// サーバーを起動
	if err := app.Run(context.Background(), cfg, os.Stdout); err != nil {
		app.Fail(os.Stdout, err)
		os.Exit(1)
	}
}
