// Package status は、接続処理の集計とステータスエンドポイントを提供します。
//
// 責務:
//   - 接続ごとの処理結果（配信・404・拒否・障害）の集計
//   - 集計結果とヘルスチェックのJSON配信
//
// 仕様:
//   - ルーティングはgin-gonic/ginを使用
//   - 静的コンテンツを配信するTCPリスナーとは別のポートで動作する
//   - 既定では無効（status.enabled: true で起動）
//   - 集計はsync/atomicで行い、ロックを取らない
package status
