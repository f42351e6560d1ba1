package server

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"time"

	"httpdsharp/internal/docroot"
	"httpdsharp/internal/mimetype"
	"httpdsharp/internal/request"
	"httpdsharp/internal/response"
	"httpdsharp/internal/status"
)

// Logger はリクエスト処理の記録先
type Logger interface {
	Debug(text string)
	Debugf(format string, args ...any)
}

// Recorder は接続の処理結果を集計する
type Recorder interface {
	Accepted()
	Record(o status.Outcome, bytes int)
}

// nopRecorder は何も集計しない
type nopRecorder struct{}

func (nopRecorder) Accepted()                  {}
func (nopRecorder) Record(status.Outcome, int) {}

// Handler は1接続を最後まで処理する
// 設定は作成後に変更されず、複数の接続から同時に使われる
type Handler struct {
	resolver    *docroot.Resolver
	mimeTypes   mimetype.Table
	log         Logger
	stats       Recorder
	readTimeout time.Duration
	confine     bool
}

// connection は1接続ぶんの処理状態
// 接続を処理するゴルーチンだけが所有する
type connection struct {
	h      *Handler
	conn   net.Conn
	reader *bufio.Reader
	writer *response.Writer
	client string

	raw      *request.Raw
	req      *request.Parsed
	file     docroot.File
	mimeType string

	outcome status.Outcome
	sent    int
	err     error
}

type stateFunc func(*connection) stateFunc

// Handle は接続を処理して閉じる
// 途中で発生した障害やpanicは記録するだけで呼び出し側には伝えない
func (h *Handler) Handle(conn net.Conn) {
	c := &connection{
		h:      h,
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: response.NewWriter(conn, h.log),
		client: remoteAddr(conn),
	}
	defer c.finish()
	defer func() {
		if r := recover(); r != nil {
			c.err = fmt.Errorf("panic: %v", r)
			faulted(c)
		}
	}()

	for state := awaitingHeaders; state != nil; {
		state = state(c)
	}
}

// finish は処理結果を集計して接続を閉じる
func (c *connection) finish() {
	c.h.stats.Record(c.outcome, c.sent)
	_ = c.conn.Close()
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// state funcs

func awaitingHeaders(c *connection) stateFunc {
	if c.h.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.h.readTimeout)); err != nil {
			c.err = err
			return faulted
		}
	}

	raw, err := request.ReadRaw(c.reader)
	if err != nil {
		c.err = err
		return faulted
	}
	c.raw = raw

	if !request.IsGet(raw.Line) {
		return rejected
	}
	return resolvingPath
}

func rejected(c *connection) stateFunc {
	c.h.log.Debug("Unsupported request " + c.raw.Line)
	c.outcome = status.OutcomeRejected
	return nil
}

func resolvingPath(c *connection) stateFunc {
	// リバースプロキシ経由の場合は記録するクライアントを差し替える
	if xff, ok := c.raw.Headers.Get("X-Forwarded-For"); ok {
		c.client = xff
	}

	req, err := request.ParseRequestLine(c.raw.Line)
	if err != nil {
		c.err = err
		return faulted
	}
	c.req = req

	c.file = c.h.resolver.Resolve(req.Path)
	if !c.file.Exists {
		return notFound
	}
	if c.h.confine && !c.h.resolver.Confined(c.file.LocalPath) {
		return notFound
	}

	// MIMEタイプが不明なファイルは存在しないものとして扱う
	c.mimeType = c.h.mimeTypes.Lookup(c.file.LocalPath)
	if c.mimeType == "" {
		return notFound
	}
	return serving
}

func notFound(c *connection) stateFunc {
	c.outcome = status.OutcomeNotFound
	_ = c.writer.SendNotFound(c.req.Version)
	c.h.log.Debugf("%s %s 0 404", c.client, c.file.URL)
	return nil
}

func serving(c *connection) stateFunc {
	data, err := os.ReadFile(c.file.LocalPath)
	if err != nil {
		c.err = err
		return faulted
	}

	c.outcome = status.OutcomeServed
	c.h.log.Debugf("%s %s %d 200", c.client, c.file.URL, len(data))

	if err := c.writer.Send(c.req.Version, response.StatusOK, c.mimeType, data); err == nil {
		c.sent = len(data)
	}
	return nil
}

func faulted(c *connection) stateFunc {
	c.outcome = status.OutcomeFaulted
	c.h.log.Debugf("Unexpected error: %v", c.err)
	return nil
}
