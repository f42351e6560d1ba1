// Package response はステータス行、固定ヘッダー、本文をコネクションへ書き出します。
package response

import (
	"fmt"
	"io"
)

const (
	// StatusOK は200のステータス文字列（先頭の空白を含む）
	StatusOK = " 200 OK"
	// StatusNotFound は404のステータス文字列（先頭の空白を含む）
	StatusNotFound = " 404 Not Found"

	// ServerName はServerヘッダーの値
	ServerName = "httpdSharp"
	// DefaultContentType はMIMEタイプが空の場合に使うContent-Type
	DefaultContentType = "text/html"

	// NotFoundBody は404ページの本文
	NotFoundBody = "<html><body><H2>404 Not Found</H2></body></html>"
)

// ErrorLogger は送信エラーの記録先
type ErrorLogger interface {
	Debugf(format string, args ...any)
}

// Header はヘッダーブロックを組み立てる
func Header(version, status, mimeType string, contentLength int) []byte {
	if mimeType == "" {
		mimeType = DefaultContentType
	}
	return fmt.Appendf(nil,
		"%s%s\r\nServer: %s\r\nContent-Type: %s\r\nContent-Length: %d\r\n\r\n",
		version, status, ServerName, mimeType, contentLength)
}

// Writer はコネクションへの書き出しを担う
type Writer struct {
	w   io.Writer
	log ErrorLogger
}

// NewWriter は新しいWriterを作成する
func NewWriter(w io.Writer, log ErrorLogger) *Writer {
	return &Writer{w: w, log: log}
}

// Send はヘッダーブロックと本文を続けて書き出す
// Content-Length は常に本文の長さになる
// 送信に失敗した場合は記録してエラーを返すが、呼び出し側は閉じるだけでよい
func (w *Writer) Send(version, status, mimeType string, body []byte) error {
	if err := w.send(Header(version, status, mimeType, len(body))); err != nil {
		return err
	}
	return w.send(body)
}

// SendNotFound は404ページを書き出す
func (w *Writer) SendNotFound(version string) error {
	return w.Send(version, StatusNotFound, "", []byte(NotFoundBody))
}

func (w *Writer) send(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.log.Debugf("Error Occurred : %v", err)
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}
