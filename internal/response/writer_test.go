package response

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// recordLogger はDebugfの呼び出しを記録する
type recordLogger struct {
	lines []string
}

func (l *recordLogger) Debugf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// failWriter は常に失敗するio.Writer
type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestHeader(t *testing.T) {
	got := string(Header("HTTP/1.1", StatusOK, "image/png", 42))
	want := "HTTP/1.1 200 OK\r\nServer: httpdSharp\r\nContent-Type: image/png\r\nContent-Length: 42\r\n\r\n"
	if got != want {
		t.Errorf("Header() = %q, want %q", got, want)
	}

	got = string(Header("HTTP/1.0", StatusNotFound, "", 0))
	want = "HTTP/1.0 404 Not Found\r\nServer: httpdSharp\r\nContent-Type: text/html\r\nContent-Length: 0\r\n\r\n"
	if got != want {
		t.Errorf("Header() with empty MIME type = %q, want %q", got, want)
	}
}

func TestSend(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, &recordLogger{})

	body := []byte("0123456789")
	if err := w.Send("HTTP/1.1", StatusOK, "text/html", body); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	want := "HTTP/1.1 200 OK\r\nServer: httpdSharp\r\nContent-Type: text/html\r\nContent-Length: 10\r\n\r\n0123456789"
	if buf.String() != want {
		t.Errorf("Send wrote %q, want %q", buf.String(), want)
	}
}

func TestSendNotFound(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, &recordLogger{})

	if err := w.SendNotFound("HTTP/1.1"); err != nil {
		t.Fatalf("SendNotFound failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n") {
		t.Errorf("Unexpected status line: %q", out)
	}
	if !strings.Contains(out, fmt.Sprintf("Content-Length: %d\r\n", len(NotFoundBody))) {
		t.Errorf("Content-Length does not match body length: %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\n"+NotFoundBody) {
		t.Errorf("Unexpected body: %q", out)
	}
}

func TestSendFailureIsLogged(t *testing.T) {
	log := &recordLogger{}
	w := NewWriter(failWriter{}, log)

	if err := w.Send("HTTP/1.1", StatusOK, "text/plain", []byte("x")); err == nil {
		t.Fatal("Expected send error")
	}
	if len(log.lines) != 1 || !strings.Contains(log.lines[0], "connection reset") {
		t.Errorf("Expected one logged send failure, got %v", log.lines)
	}
}
