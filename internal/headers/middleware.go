package headers

import (
	"github.com/gin-gonic/gin"
)

// Middleware はヘッダー集合を全レスポンスに付与するginミドルウェアを返す。
// エンジンのグローバルミドルウェアとして登録すること。NoRoute/NoMethodの
// チェーンにも含まれるため、エラー応答やリダイレクトにも適用される。
func Middleware(set Set) gin.HandlerFunc {
	// 起動後に呼び出し元が変更しても影響を受けないようコピーする
	fixed := make(Set, len(set))
	copy(fixed, set)

	return func(c *gin.Context) {
		fixed.Apply(c.Writer.Header())
		c.Next()
	}
}
