package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"httpdsharp/internal/config"
	"httpdsharp/internal/logger"
	"httpdsharp/internal/status"
)

// startTestServer はランダムポートでサーバーを起動する
func startTestServer(t *testing.T, cfg *config.Config, l Logger, stats Recorder) *Server {
	t.Helper()

	srv, err := New(cfg, l, stats)
	if err != nil {
		t.Fatalf("サーバーの作成に失敗しました: %v", err)
	}
	if err := srv.Listen(); err != nil {
		t.Fatalf("サーバーの起動に失敗しました: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("受け付けループがエラーで終了しました: %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Error("受け付けループの停止がタイムアウトしました")
		}
	})
	return srv
}

// exchange はリクエストを送り、サーバーが閉じるまで応答を読む
func exchange(addr net.Addr, req string) (string, error) {
	conn, err := net.DialTimeout("tcp", addr.String(), 3*time.Second)
	if err != nil {
		return "", fmt.Errorf("接続に失敗しました: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := io.WriteString(conn, req); err != nil {
		return "", fmt.Errorf("リクエストの送信に失敗しました: %w", err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("応答の読み込みに失敗しました: %w", err)
	}
	return string(data), nil
}

func roundTrip(t *testing.T, addr net.Addr, req string) string {
	t.Helper()

	resp, err := exchange(addr, req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// TestServerRoundTrip は実際のTCP接続で応答をテストする
func TestServerRoundTrip(t *testing.T) {
	cfg := newTestConfig(t)
	l := &recordLogger{}
	srv := startTestServer(t, cfg, l, nil)

	testCases := []struct {
		name    string
		request string
		want    string
	}{
		{"200", "GET /index.html HTTP/1.1\r\n\r\n", okResponse("text/html", "0123456789")},
		{"デフォルトドキュメント", "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n", okResponse("text/html", "0123456789")},
		{"404", "GET /missing.png HTTP/1.1\r\n\r\n", notFoundResponse("HTTP/1.1")},
		{"GET以外は応答しない", "DELETE /index.html HTTP/1.1\r\n\r\n", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := roundTrip(t, srv.Addr(), tc.request); got != tc.want {
				t.Errorf("Got %q, want %q", got, tc.want)
			}
		})
	}
}

// TestServerConcurrentRequests は同時接続で応答とログが混ざらないことをテストする
func TestServerConcurrentRequests(t *testing.T) {
	cfg := newTestConfig(t)

	const n = 20
	for i := 0; i < n; i++ {
		body := strings.Repeat(fmt.Sprintf("%02d", i), 1000+i)
		path := filepath.Join(cfg.Server.WWWRoot, fmt.Sprintf("file%02d.txt", i))
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("テストファイルの作成に失敗しました: %v", err)
		}
	}

	logPath := filepath.Join(t.TempDir(), logger.DefaultFileName)
	l := logger.New(logPath, io.Discard)
	stats := status.NewStats()
	srv := startTestServer(t, cfg, l, stats)

	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := exchange(srv.Addr(), fmt.Sprintf("GET /file%02d.txt HTTP/1.1\r\n\r\n", i))
			if err != nil {
				t.Error(err)
			}
			results[i] = resp
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		body := strings.Repeat(fmt.Sprintf("%02d", i), 1000+i)
		if want := okResponse("text/plain", body); got != want {
			t.Errorf("Response %d is corrupted (len %d, want %d)", i, len(got), len(want))
		}
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ログファイルの読み込みに失敗しました: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != n {
		t.Fatalf("Expected %d log lines, got %d: %q", n, len(lines), string(data))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, " 200") || strings.Count(line, "/file") != 1 {
			t.Errorf("Corrupted log line: %q", line)
		}
	}

	if snap := stats.Snapshot(); snap.Accepted != n || snap.Served != n {
		t.Errorf("Unexpected stats: %+v", snap)
	}
}

// TestServerWithPool はワーカー数を制限した場合をテストする
func TestServerWithPool(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Server.MaxWorkers = 2
	srv := startTestServer(t, cfg, &recordLogger{}, nil)

	if _, ok := srv.dispatcher.(*Pool); !ok {
		t.Fatalf("Expected Pool dispatcher, got %T", srv.dispatcher)
	}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := exchange(srv.Addr(), "GET /a.txt HTTP/1.1\r\n\r\n")
			if err != nil {
				t.Error(err)
				return
			}
			if want := okResponse("text/plain", "hello text"); got != want {
				t.Errorf("Got %q, want %q", got, want)
			}
		}()
	}
	wg.Wait()
}

// TestServerReadTimeout は読み込み期限を設定した場合に応答しないクライアントが切断されることをテストする
func TestServerReadTimeout(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Server.ReadTimeout = 100 * time.Millisecond
	l := &recordLogger{}
	srv := startTestServer(t, cfg, l, nil)

	// ヘッダーの終端を送らない
	if got := roundTrip(t, srv.Addr(), "GET / HTTP/1.1\r\n"); got != "" {
		t.Errorf("Expected no response, got %q", got)
	}

	lines := l.Lines()
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "Unexpected error: ") {
		t.Errorf("Unexpected log lines: %q", lines)
	}
}

// TestServerBindFailure はポートが使用中の場合をテストする
func TestServerBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("リスナーの作成に失敗しました: %v", err)
	}
	defer ln.Close()

	cfg := newTestConfig(t)
	cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port

	srv, err := New(cfg, &recordLogger{}, nil)
	if err != nil {
		t.Fatalf("サーバーの作成に失敗しました: %v", err)
	}
	if err := srv.Listen(); err == nil {
		t.Error("エラーが期待されましたが、エラーが発生しませんでした")
	}
	if err := srv.Serve(context.Background()); err == nil {
		t.Error("リスナーなしのServeはエラーになるべきです")
	}
}

// TestServerStartAndShutdown はサーバーの起動とシャットダウンをテストする
func TestServerStartAndShutdown(t *testing.T) {
	cfg := newTestConfig(t)
	srv, err := New(cfg, &recordLogger{}, nil)
	if err != nil {
		t.Fatalf("サーバーの作成に失敗しました: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("サーバーの起動/停止でエラーが発生しました: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("サーバーの停止がタイムアウトしました")
	}
}
