// Package headers は、全レスポンスに付与するセキュリティポリシーヘッダーを扱います。
//
// ヘッダー集合は起動時に決まる順序付きのリストで、実行中には変更されません。
// 2種類の名前付きプリセットを提供します:
//   - isolation: Referrer-Policy, Permissions-Policy, COOP, COEP
//   - nosniff:   Referrer-Policy, Permissions-Policy, X-Content-Type-Options
package headers
