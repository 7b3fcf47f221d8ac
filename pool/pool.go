// Package pool hands reusable segmentation workspaces to concurrent callers.
package pool

import (
	"context"
	"errors"
	"sync"

	"github.com/jamesainslie/go-unigram/tokenizer"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("pool: closed")

// Pool manages a fixed set of lattice workspaces. A lattice is owned by one
// goroutine between Acquire and Release.
type Pool struct {
	lattices chan *tokenizer.Lattice
	size     int
	mu       sync.Mutex
	closed   bool
}

// New creates a pool of size lattices. Sizes below one become one.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		lattices: make(chan *tokenizer.Lattice, size),
		size:     size,
	}
	for i := 0; i < size; i++ {
		p.lattices <- tokenizer.NewLattice()
	}

	return p
}

// Acquire gets a lattice from the pool, blocking if none available.
// Respects context cancellation. Returns ErrPoolClosed if the pool is closed.
func (p *Pool) Acquire(ctx context.Context) (*tokenizer.Lattice, error) {
	select {
	case l, ok := <-p.lattices:
		if !ok {
			return nil, ErrPoolClosed
		}
		return l, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a lattice to the pool. Lattices released after Close, or
// beyond the pool's capacity, are dropped.
func (p *Pool) Release(l *tokenizer.Lattice) {
	if l == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	select {
	case p.lattices <- l:
	default:
	}
}

// Close drains the pool. Blocked and later Acquire calls fail with ErrPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.lattices)

	for range p.lattices {
	}
	return nil
}

// Size returns the pool size.
func (p *Pool) Size() int {
	return p.size
}
