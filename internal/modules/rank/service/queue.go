package service

import (
	"runtime/debug"
	"sync"

	log "github.com/sirupsen/logrus"
)

// KeyedQueue runs jobs in submission order per key, and keys in parallel.
// A key's lane only has a goroutine while it has pending work.
type KeyedQueue struct {
	mu     sync.Mutex
	lanes  map[string][]func()
	wg     sync.WaitGroup
	closed bool
}

func NewKeyedQueue() *KeyedQueue {
	return &KeyedQueue{lanes: make(map[string][]func())}
}

// Submit enqueues job behind earlier jobs for key. It reports false after Close.
func (q *KeyedQueue) Submit(key string, job func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	pending, running := q.lanes[key]
	q.lanes[key] = append(pending, job)
	if !running {
		q.wg.Add(1)
		go q.drain(key)
	}
	return true
}

func (q *KeyedQueue) drain(key string) {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		pending := q.lanes[key]
		if len(pending) == 0 {
			delete(q.lanes, key)
			q.mu.Unlock()
			return
		}
		job := pending[0]
		q.lanes[key] = pending[1:]
		q.mu.Unlock()

		q.run(key, job)
	}
}

// run is the failure boundary of one job; a panic never stalls the lane.
func (q *KeyedQueue) run(key string, job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"key":   key,
				"stack": string(debug.Stack()),
			}).Errorf("queued job panicked: %v", r)
		}
	}()
	job()
}

// Wait blocks until every submitted job has run.
func (q *KeyedQueue) Wait() {
	q.wg.Wait()
}

// Close rejects new jobs; already queued jobs still run.
func (q *KeyedQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
