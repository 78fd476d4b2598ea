package server

import (
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
)

const listingTemplateName = "listing"

var listingTemplate = template.Must(template.New(listingTemplateName).Parse(`<!DOCTYPE HTML>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Directory listing for {{.Path}}</title>
</head>
<body>
<h1>Directory listing for {{.Path}}</h1>
<hr>
<ul>
{{- range .Entries}}
<li><a href="{{.Href}}">{{.Name}}</a></li>
{{- end}}
</ul>
<hr>
</body>
</html>
`))

// listingEntry はディレクトリ一覧の1行
type listingEntry struct {
	Name string // 表示名 (ディレクトリは "/"、シンボリックリンクは "@" 付き)
	Href string // エスケープ済みの相対リンク
}

// serveListing はディレクトリの内容をHTMLで返す
func (h *staticHandler) serveListing(c *gin.Context, name, urlPath string) {
	infos, err := afero.ReadDir(h.fs, name)
	if err != nil {
		writeFSError(c, err)
		return
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return strings.ToLower(infos[i].Name()) < strings.ToLower(infos[j].Name())
	})

	entries := make([]listingEntry, 0, len(infos))
	for _, info := range infos {
		display, link := info.Name(), info.Name()
		switch {
		case info.IsDir():
			display += "/"
			link += "/"
		case isSymlink(info):
			display += "@"
		}
		entries = append(entries, listingEntry{
			Name: display,
			Href: (&url.URL{Path: link}).String(),
		})
	}

	c.HTML(http.StatusOK, listingTemplateName, gin.H{
		"Path":    urlPath,
		"Entries": entries,
	})
}
