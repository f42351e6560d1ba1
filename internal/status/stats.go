package status

import (
	"sync/atomic"
	"time"
)

// Outcome は1接続の処理結果
type Outcome int

const (
	OutcomeServed   Outcome = iota // 200を返した
	OutcomeNotFound                // 404を返した
	OutcomeRejected                // GET以外のため応答せずに閉じた
	OutcomeFaulted                 // 処理中に障害が発生した
)

// String は処理結果の名前を返す
func (o Outcome) String() string {
	switch o {
	case OutcomeServed:
		return "served"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Stats は処理結果の集計
type Stats struct {
	startedAt time.Time

	accepted  atomic.Int64
	served    atomic.Int64
	notFound  atomic.Int64
	rejected  atomic.Int64
	faulted   atomic.Int64
	bytesSent atomic.Int64
}

// Snapshot はある時点の集計値
type Snapshot struct {
	StartedAt time.Time `json:"started_at"`
	Accepted  int64     `json:"accepted"`
	Served    int64     `json:"served"`
	NotFound  int64     `json:"not_found"`
	Rejected  int64     `json:"rejected"`
	Faulted   int64     `json:"faulted"`
	BytesSent int64     `json:"bytes_sent"`
}

// NewStats は新しいStatsを作成する
func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

// Accepted は受け付けた接続を数える
func (s *Stats) Accepted() {
	s.accepted.Add(1)
}

// Record は接続の処理結果と送信した本文のバイト数を数える
func (s *Stats) Record(o Outcome, bytes int) {
	switch o {
	case OutcomeServed:
		s.served.Add(1)
	case OutcomeNotFound:
		s.notFound.Add(1)
	case OutcomeRejected:
		s.rejected.Add(1)
	case OutcomeFaulted:
		s.faulted.Add(1)
	}
	s.bytesSent.Add(int64(bytes))
}

// Snapshot は現在の集計値を返す
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		StartedAt: s.startedAt,
		Accepted:  s.accepted.Load(),
		Served:    s.served.Load(),
		NotFound:  s.notFound.Load(),
		Rejected:  s.rejected.Load(),
		Faulted:   s.faulted.Load(),
		BytesSent: s.bytesSent.Load(),
	}
}
