// Package server は、静的アセットを配信するHTTPサーバーを管理します。
//
// このパッケージは、ドキュメントルート配下のファイル配信、ディレクトリ一覧の生成、
// サーバーの起動とシャットダウンを担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - 静的ファイル（HTML/CSS/JS/WASM）の配信
//   - ディレクトリ一覧またはインデックスファイルの配信
//   - 全レスポンスへのセキュリティヘッダーの付与
//
// 仕様:
//   - ルーティングとミドルウェアはgin-gonic/ginを使用
//   - ドキュメントルートはaferoの読み取り専用ファイルシステムで公開
//   - ルート外を指すパスは404
//   - GET/HEAD以外のメソッドは501
//   - 複数クライアントの同時接続をサポート
package server
