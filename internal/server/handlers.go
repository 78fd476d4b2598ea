package server

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"whitespider/internal/config"
)

// staticHandler はドキュメントルート配下のファイルを配信する
type staticHandler struct {
	fs            afero.Fs
	indexFiles    []string
	listDirectory bool
}

// newStaticHandler は新しいstaticHandlerを作成する
func newStaticHandler(root afero.Fs, cfg config.StaticConfig) *staticHandler {
	return &staticHandler{
		fs:            root,
		indexFiles:    cfg.IndexFiles,
		listDirectory: cfg.ListDirectory,
	}
}

// serve はリクエストパスをファイル、インデックス、ディレクトリ一覧のいずれかに解決する
func (h *staticHandler) serve(c *gin.Context) {
	urlPath := c.Request.URL.Path
	name := path.Clean("/" + urlPath)

	info, err := h.fs.Stat(name)
	if err != nil {
		writeFSError(c, err)
		return
	}

	if !info.IsDir() {
		// 末尾スラッシュ付きでファイルを指すパスは存在しないものとして扱う
		if strings.HasSuffix(urlPath, "/") {
			writeError(c, http.StatusNotFound)
			return
		}
		h.serveFile(c, name, info)
		return
	}

	if !strings.HasSuffix(urlPath, "/") {
		// 生のパスを使うと "//host" 形式で別オリジンへ飛ぶため、正規化後の名前から組み立てる
		target := "/"
		if name != "/" {
			target = name + "/"
		}
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		c.Redirect(http.StatusMovedPermanently, target)
		return
	}

	for _, index := range h.indexFiles {
		indexName := path.Join(name, index)
		if fi, err := h.fs.Stat(indexName); err == nil && !fi.IsDir() {
			h.serveFile(c, indexName, fi)
			return
		}
	}

	if !h.listDirectory {
		writeError(c, http.StatusNotFound)
		return
	}
	h.serveListing(c, name, urlPath)
}

// serveFile はファイルの内容を返す。条件付きリクエストとRangeはServeContentに任せる。
func (h *staticHandler) serveFile(c *gin.Context, name string, info fs.FileInfo) {
	f, err := h.fs.Open(name)
	if err != nil {
		writeFSError(c, err)
		return
	}
	defer f.Close()

	ctype, err := contentType(name, f)
	if err != nil {
		writeFSError(c, err)
		return
	}
	c.Header("Content-Type", ctype)

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// contentType は拡張子からContent-Typeを決め、わからなければ内容から判定する
func contentType(name string, f io.ReadSeeker) (string, error) {
	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		return ctype, nil
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}

// writeFSError はファイルシステムのエラーをHTTPステータスに変換して返す
func writeFSError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		writeError(c, http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		writeError(c, http.StatusForbidden)
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError)
	}
}

// writeError はステータスコードと短い本文を返す
func writeError(c *gin.Context, status int) {
	c.Writer.Header().Del("Content-Type")
	c.String(status, "%d %s\n", status, http.StatusText(status))
}

// isSymlink はファイル情報がシンボリックリンクを表すか判定する
func isSymlink(info os.FileInfo) bool {
	return info.Mode()&os.ModeSymlink != 0
}
