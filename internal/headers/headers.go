package headers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// ErrUnknownPreset は存在しないプリセット名が指定された場合のエラー
var ErrUnknownPreset = errors.New("unknown header preset")

// プリセット名
const (
	PresetIsolation = "isolation" // クロスオリジン分離 (COOP/COEP)
	PresetNoSniff   = "nosniff"   // MIMEスニッフィング抑止
)

// DefaultPreset はデフォルトで使用するプリセット
const DefaultPreset = PresetIsolation

// DefaultDisabledFeatures はPermissions-Policyで無効化するブラウザ機能
var DefaultDisabledFeatures = []string{
	"camera",
	"gyroscope",
	"microphone",
	"geolocation",
	"local-fonts",
	"accelerometer",
	"browsing-topics",
	"display-capture",
	"screen-wake-lock",
}

// Header はレスポンスに付与する単一のヘッダー
type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Set は全レスポンスに付与するヘッダーの順序付き集合
type Set []Header

// PermissionsPolicy は指定された機能をすべて無効化するPermissions-Policyの値を返す
func PermissionsPolicy(features ...string) string {
	parts := make([]string, 0, len(features))
	for _, f := range features {
		parts = append(parts, f+"=()")
	}
	return strings.Join(parts, ", ")
}

func base() Set {
	return Set{
		{Name: "Referrer-Policy", Value: "no-referrer"},
		{Name: "Permissions-Policy", Value: PermissionsPolicy(DefaultDisabledFeatures...)},
	}
}

var presets = map[string]func() Set{
	PresetIsolation: func() Set {
		return append(base(),
			Header{Name: "Cross-Origin-Opener-Policy", Value: "same-origin"},
			Header{Name: "Cross-Origin-Embedder-Policy", Value: "require-corp"},
		)
	},
	PresetNoSniff: func() Set {
		return append(base(),
			Header{Name: "X-Content-Type-Options", Value: "nosniff"},
		)
	},
}

// Preset は名前付きプリセットのヘッダー集合を返す
func Preset(name string) (Set, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return build(), nil
}

// PresetNames は利用可能なプリセット名をソートして返す
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge はextraを追加した新しい集合を返す。
// 同名のヘッダーは元の位置のまま値だけ置き換える。
func (s Set) Merge(extra Set) Set {
	out := make(Set, len(s), len(s)+len(extra))
	copy(out, s)

	for _, h := range extra {
		replaced := false
		for i := range out {
			if http.CanonicalHeaderKey(out[i].Name) == http.CanonicalHeaderKey(h.Name) {
				out[i].Value = h.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, h)
		}
	}
	return out
}

// Validate はヘッダー名と値がHTTPとして妥当か検証する
func (s Set) Validate() error {
	for _, h := range s {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return fmt.Errorf("invalid header name %q", h.Name)
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return fmt.Errorf("invalid value for header %s", h.Name)
		}
	}
	return nil
}

// Apply は集合の全ヘッダーをdstに設定する
func (s Set) Apply(dst http.Header) {
	for _, h := range s {
		dst.Set(h.Name, h.Value)
	}
}

// Parse は "Name=Value" 形式の文字列をヘッダーに変換する
func Parse(kv string) (Header, error) {
	name, value, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Header{}, fmt.Errorf("header must be in Name=Value form: %q", kv)
	}
	return Header{Name: name, Value: strings.TrimSpace(value)}, nil
}
