// Package safe_close 提供多组件优雅关闭的协调原语
// 各组件通过 Attach 注册，收到关闭信号后完成收尾并调用 done
package safe_close

import (
	"sync"
)

type SafeClose struct {
	mu          sync.Mutex
	closeNotify chan struct{}
	closed      bool
	err         error

	wg sync.WaitGroup
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeNotify: make(chan struct{}),
	}
}

// Attach 注册一个需要参与优雅关闭的组件
// f 在独立 goroutine 中运行；组件监听 closeSignal，完成收尾后必须调用 done
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	done := func() {
		s.wg.Done()
	}
	go f(done, s.closeNotify)
}

// SendCloseSignal 发出关闭信号
// 首个携带非 nil 错误的调用决定 WaitClosed 的返回值，重复调用无副作用
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.closeNotify)
}

// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeNotify
}

// WaitClosed 阻塞直到所有已注册组件完成收尾，返回触发关闭的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
