// Package request はコネクションからリクエスト行とヘッダーを読み取ります。
//
// リクエスト行の分解は固定オフセットの切り出しで行う。
// 一般的なトークン分割に置き換えると不正な入力を黙って受け入れてしまうため、
// 長さが足りない行はエラーとして扱う。
package request

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// versionLen は "HTTP/1.1" の長さ
	versionLen = 8
	// suffixLen は区切りの空白とバージョンを合わせた長さ
	suffixLen = versionLen + 1
	// getPrefix はリクエスト行から取り除く接頭辞
	getPrefix = "GET "
)

var (
	// ErrMalformedHeader は ":" を含まないヘッダー行を読んだ場合のエラー
	ErrMalformedHeader = errors.New("malformed header line")
	// ErrRequestLineTooShort はリクエスト行が固定オフセットの切り出しに満たない場合のエラー
	ErrRequestLineTooShort = errors.New("request line too short")
)

// Header はヘッダー名を大文字化したキーで値を保持する
// map[string][]string ではなく、重複したキーは後勝ち
type Header map[string]string

// Get は大文字小文字を区別せずにヘッダーを引く
func (h Header) Get(name string) (string, bool) {
	v, ok := h[strings.ToUpper(strings.TrimSpace(name))]
	return v, ok
}

// Raw は読み取ったままのリクエスト
type Raw struct {
	Line    string
	Headers Header
}

// Parsed はリクエスト行を分解した結果
type Parsed struct {
	Method  string
	Path    string
	Version string
}

// ReadRaw は空行かストリームの終端までを読み、最初の行をリクエスト行とする
func ReadRaw(r io.Reader) (*Raw, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	raw := &Raw{Headers: make(Header)}
	first := true
	for {
		line, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read headers: %w", err)
		}
		if line == "" {
			break
		}

		if first {
			raw.Line = line
			first = false
			continue
		}

		i := strings.Index(line, ":")
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		key := strings.ToUpper(strings.TrimSpace(line[:i]))
		raw.Headers[key] = strings.TrimSpace(line[i+1:])
	}
	return raw, nil
}

// readLine は net/textproto の readLineSlice と同様に1行を読む
// 行末の "\r\n" または "\n" は取り除かれる
func readLine(r *bufio.Reader) (string, error) {
	var line []byte
	for {
		l, more, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if line == nil && !more {
			return string(l), nil
		}
		line = append(line, l...)
		if !more {
			break
		}
	}
	return string(line), nil
}

// IsGet はリクエスト行がGETで始まるかを大文字小文字を区別せずに判定する
func IsGet(line string) bool {
	return strings.HasPrefix(strings.ToUpper(line), "GET")
}

// ParseRequestLine は "GET <path> HTTP/x.y" 形式の行を固定オフセットで分解する
//
// 末尾8文字をバージョンとし、"GET " を取り除いた残りから末尾9文字を落としたものをパスとする。
// 呼び出し側は事前に IsGet で確認しておくこと。
func ParseRequestLine(line string) (*Parsed, error) {
	if len(line) < versionLen {
		return nil, fmt.Errorf("%w: %q", ErrRequestLineTooShort, line)
	}
	version := line[len(line)-versionLen:]

	rest := strings.ReplaceAll(line, getPrefix, "")
	if len(rest) < suffixLen {
		return nil, fmt.Errorf("%w: %q", ErrRequestLineTooShort, line)
	}

	return &Parsed{
		Method:  "GET",
		Path:    rest[:len(rest)-suffixLen],
		Version: version,
	}, nil
}
