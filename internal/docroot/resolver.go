// Package docroot はリクエストパスをドキュメントルート配下のローカルファイルに対応付けます。
//
// パスは文字列連結で組み立て、正規化は行わない。
// ".." を含むパスもそのまま解決されるため、ルート外への到達を防ぐ場合は
// Confined で別途確認すること。
package docroot

import (
	"os"
	"path/filepath"
	"strings"
)

// File は解決結果
type File struct {
	URL       string // デフォルトドキュメント置換後のリクエストパス（クエリ文字列を含む）
	LocalPath string // ローカルファイルパス
	Exists    bool   // 通常ファイルとして存在するか
}

// Resolver はドキュメントルートとデフォルトドキュメントを保持する
type Resolver struct {
	root            string
	defaultDocument string
}

// New は新しいResolverを作成する
func New(root, defaultDocument string) *Resolver {
	return &Resolver{
		root:            root,
		defaultDocument: defaultDocument,
	}
}

// Resolve はリクエストパスをローカルファイルに対応付ける
func (r *Resolver) Resolve(path string) File {
	url := path
	if url == "/" {
		url += r.defaultDocument
	}

	// クエリ文字列は無視する
	local := url
	if i := strings.Index(local, "?"); i >= 0 {
		local = local[:i]
	}
	local = r.root + filepath.FromSlash(local)

	return File{
		URL:       url,
		LocalPath: local,
		Exists:    exists(local),
	}
}

// Confined はローカルパスがドキュメントルートの外に出ていないかを判定する
func (r *Resolver) Confined(localPath string) bool {
	root, err := filepath.Abs(r.root)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(localPath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// exists は通常ファイルとして存在するかを確認する
func exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
