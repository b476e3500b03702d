package services

import "sync"

// Fence hands out generation tokens so that only the response to the most
// recent request of a kind is applied. After Close no token is current.
type Fence struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
}

// Next starts a new generation and returns its token.
func (f *Fence) Next() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	return f.gen
}

func (f *Fence) IsCurrent(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed && gen == f.gen
}

func (f *Fence) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}
