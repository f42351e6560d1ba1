// Package logger はリクエスト処理の記録をログファイルとコンソールへ書き出します。
//
// 仕様:
//   - 1イベント1行、書式は "<UTC時刻> <メッセージ>"
//   - 1つのMutexで書き込みを直列化し、並行して呼ばれても行が混ざらない
//   - ログファイルへの書き込み失敗はコンソールにのみ報告し、呼び出し側には返さない
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimestampLayout はログ行の時刻書式
const TimestampLayout = "1/2/2006 3:04:05 PM"

// DefaultFileName は実行ファイルと同じディレクトリに置くログファイル名
const DefaultFileName = "httpdSharp.log"

// Logger は共有のログ出力先
type Logger struct {
	mu      sync.Mutex
	path    string
	console io.Writer
	now     func() time.Time
}

// New は新しいLoggerを作成する
// path が空の場合はコンソールにのみ出力する
func New(path string, console io.Writer) *Logger {
	if console == nil {
		console = os.Stdout
	}
	return &Logger{
		path:    path,
		console: console,
		now:     time.Now,
	}
}

// DefaultPath は実行ファイルのディレクトリにあるログファイルのパスを返す
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

// Path はログファイルのパスを返す
func (l *Logger) Path() string {
	return l.path
}

// Debug は1行を記録する
func (l *Logger) Debug(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := l.now().UTC().Format(TimestampLayout) + " " + text

	if l.path != "" {
		if err := l.appendLine(line); err != nil {
			fmt.Fprintf(l.console, "Error writing to logfile: %v\n", err)
		}
	}
	fmt.Fprintln(l.console, line)
}

// Debugf は書式付きで1行を記録する
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}

// appendLine は呼び出しごとにファイルを開いて追記する
func (l *Logger) appendLine(line string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
