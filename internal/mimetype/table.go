// Package mimetype は拡張子からMIMEタイプを引くテーブルを提供します。
package mimetype

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Entry は拡張子とMIMEタイプの組
type Entry struct {
	Ext  string // 先頭のドットを含む拡張子 (例: .html)
	Type string // MIMEタイプ (例: text/html)
}

// Table は設定順に並んだEntryの列
type Table []Entry

// ParseTable は "ext|type;ext|type" 形式の定義をTableに変換する
// 空のセグメントは読み飛ばし、"|" を含まないセグメントはエラーとする
func ParseTable(defs string) (Table, error) {
	var table Table
	for _, seg := range strings.Split(defs, ";") {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		parts := strings.Split(seg, "|")
		if len(parts) < 2 {
			return nil, fmt.Errorf("無効なMIMEタイプ定義: %q", seg)
		}
		table = append(table, Entry{
			Ext:  strings.TrimSpace(parts[0]),
			Type: strings.TrimSpace(parts[1]),
		})
	}
	return table, nil
}

// Lookup はファイルパスの拡張子に一致する最初のMIMEタイプを返す
// 一致しない場合は空文字列を返す
func (t Table) Lookup(localPath string) string {
	ext := filepath.Ext(localPath)
	for _, e := range t {
		if strings.EqualFold(ext, e.Ext) {
			return e.Type
		}
	}
	return ""
}

// String は設定ファイルと同じ区切り形式で表を返す
func (t Table) String() string {
	pairs := make([]string, 0, len(t))
	for _, e := range t {
		pairs = append(pairs, e.Ext+"|"+e.Type)
	}
	return strings.Join(pairs, ";")
}
