package headers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wantPermissions = "camera=(), gyroscope=(), microphone=(), geolocation=(), local-fonts=(), accelerometer=(), browsing-topics=(), display-capture=(), screen-wake-lock=()"

func TestPermissionsPolicy(t *testing.T) {
	assert.Equal(t, wantPermissions, PermissionsPolicy(DefaultDisabledFeatures...))
	assert.Equal(t, "camera=()", PermissionsPolicy("camera"))
	assert.Equal(t, "", PermissionsPolicy())
}

func TestPreset(t *testing.T) {
	testCases := []struct {
		name string
		want Set
	}{
		{
			name: PresetIsolation,
			want: Set{
				{Name: "Referrer-Policy", Value: "no-referrer"},
				{Name: "Permissions-Policy", Value: wantPermissions},
				{Name: "Cross-Origin-Opener-Policy", Value: "same-origin"},
				{Name: "Cross-Origin-Embedder-Policy", Value: "require-corp"},
			},
		},
		{
			name: PresetNoSniff,
			want: Set{
				{Name: "Referrer-Policy", Value: "no-referrer"},
				{Name: "Permissions-Policy", Value: wantPermissions},
				{Name: "X-Content-Type-Options", Value: "nosniff"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Preset(tc.name)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("プリセットが一致しません (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPresetUnknown(t *testing.T) {
	_, err := Preset("strict")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPreset))
}

func TestPresetReturnsFreshCopy(t *testing.T) {
	a, err := Preset(PresetNoSniff)
	require.NoError(t, err)
	a[0].Value = "changed"

	b, err := Preset(PresetNoSniff)
	require.NoError(t, err)
	assert.Equal(t, "no-referrer", b[0].Value)
}

func TestPresetNames(t *testing.T) {
	assert.Equal(t, []string{PresetIsolation, PresetNoSniff}, PresetNames())
}

func TestMerge(t *testing.T) {
	s := Set{
		{Name: "Referrer-Policy", Value: "no-referrer"},
		{Name: "X-Content-Type-Options", Value: "nosniff"},
	}
	got := s.Merge(Set{
		{Name: "referrer-policy", Value: "same-origin"},
		{Name: "X-Frame-Options", Value: "DENY"},
	})

	want := Set{
		{Name: "Referrer-Policy", Value: "same-origin"},
		{Name: "X-Content-Type-Options", Value: "nosniff"},
		{Name: "X-Frame-Options", Value: "DENY"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("マージ結果が一致しません (-want +got):\n%s", diff)
	}
	// 元の集合は変更されない
	assert.Equal(t, "no-referrer", s[0].Value)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name      string
		set       Set
		expectErr bool
	}{
		{"正常", Set{{Name: "Referrer-Policy", Value: "no-referrer"}}, false},
		{"空の値", Set{{Name: "X-Empty", Value: ""}}, false},
		{"空の名前", Set{{Name: "", Value: "x"}}, true},
		{"名前に空白", Set{{Name: "Bad Name", Value: "x"}}, true},
		{"値に改行", Set{{Name: "X-Test", Value: "a\r\nInjected: 1"}}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.set.Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	h, err := Parse("X-Frame-Options = DENY")
	require.NoError(t, err)
	assert.Equal(t, Header{Name: "X-Frame-Options", Value: "DENY"}, h)

	h, err = Parse("Content-Security-Policy=default-src 'self'; img-src a=b")
	require.NoError(t, err)
	assert.Equal(t, "default-src 'self'; img-src a=b", h.Value)

	_, err = Parse("NoValue")
	assert.Error(t, err)
	_, err = Parse("=value")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	set, err := Preset(PresetIsolation)
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(Middleware(set))
	engine.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	testCases := []struct {
		name   string
		target string
		status int
	}{
		{"成功", "/ok", http.StatusOK},
		{"存在しないルート", "/missing", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))

			assert.Equal(t, tc.status, rec.Code)
			for _, h := range set {
				assert.Equal(t, h.Value, rec.Header().Get(h.Name), h.Name)
			}
		})
	}
}
