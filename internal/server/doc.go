// Package server は、TCP接続の受け付けと1接続ごとのリクエスト処理を管理します。
//
// このパッケージは、リスナーの起動、接続の振り分け、
// リクエストの読み取りから応答の書き出しまでの一連の処理を担当します。
//
// 責務:
//   - ポートのバインドと接続の受け付け
//   - 受け付けた接続のDispatcherへの引き渡し
//   - 1接続の処理（ヘッダー読み取り、パス解決、MIMEタイプ解決、応答、記録）
//   - 接続を必ず1回だけ閉じること
//
// 仕様:
//   - net/httpは使わず、net.Listenerの上で直接HTTPを読み書きする
//   - GETのみ対応、1接続1リクエスト
//   - 既定では接続ごとにゴルーチンを起動し、上限を設けない
//   - 1接続内の障害はその接続の中で記録して閉じ、受け付けループには伝えない
//   - 既定ではタイムアウトがなく、応答しないクライアントはゴルーチンを占有し続ける
package server
