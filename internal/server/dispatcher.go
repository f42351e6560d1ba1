package server

import "sync"

// Dispatcher は受け付けた接続の処理をどこで実行するかを決める
type Dispatcher interface {
	// Dispatch は処理を受け付けループとは別に実行する
	Dispatch(task func())
	// Close は以降のDispatchがないことを伝える
	Close()
}

// Unbounded は処理ごとにゴルーチンを起動する
type Unbounded struct{}

// Dispatch は新しいゴルーチンで処理を実行する
func (Unbounded) Dispatch(task func()) {
	go task()
}

// Close は何もしない
func (Unbounded) Close() {}

// Pool は固定数のワーカーで処理を実行する
// すべてのワーカーが処理中の場合、Dispatchは空きが出るまでブロックする
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPool は size 個のワーカーを持つPoolを作成する
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{tasks: make(chan func())}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Dispatch は空いているワーカーに処理を渡す
func (p *Pool) Dispatch(task func()) {
	p.tasks <- task
}

// Close はワーカーを停止する
// 渡し済みの処理は最後まで実行される
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.tasks)
	})
}

// Wait はすべてのワーカーが終了するまで待つ
func (p *Pool) Wait() {
	p.wg.Wait()
}

// newDispatcher はワーカー数の設定からDispatcherを選ぶ
func newDispatcher(maxWorkers int) Dispatcher {
	if maxWorkers > 0 {
		return NewPool(maxWorkers)
	}
	return Unbounded{}
}
