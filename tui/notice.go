package tui

import "sync"

// NoticeBoard holds the notice shown in the banner until it is dismissed. It
// implements conversation.Notifier and may be called from any goroutine.
type NoticeBoard struct {
	mu      sync.Mutex
	current string
	changes chan struct{}
}

// NewNoticeBoard creates an empty board.
func NewNoticeBoard() *NoticeBoard {
	return &NoticeBoard{changes: make(chan struct{}, 1)}
}

// Notify replaces the current notice.
func (b *NoticeBoard) Notify(notice string) {
	b.mu.Lock()
	b.current = notice
	b.mu.Unlock()

	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Dismiss clears the current notice.
func (b *NoticeBoard) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = ""
}

// Current returns the notice to show, empty when there is none.
func (b *NoticeBoard) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Changes receives a value after Notify. Notifications coalesce.
func (b *NoticeBoard) Changes() <-chan struct{} {
	return b.changes
}
