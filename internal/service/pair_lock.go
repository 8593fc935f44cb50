package service

import (
	"sync"
)

type votePair struct {
	from int64
	to   int64
}

type pairLock struct {
	mutex sync.Mutex
	refs  int
}

// pairLocker serializes submissions per (voter, target) pair inside this process.
// Entries are dropped once no goroutine holds or waits for them.
type pairLocker struct {
	locks      map[votePair]*pairLock
	locksMutex sync.Mutex
}

func newPairLocker() *pairLocker {
	return &pairLocker{
		locks: make(map[votePair]*pairLock),
	}
}

// Lock blocks until the pair is free and returns the matching unlock func.
func (p *pairLocker) Lock(from, to int64) func() {
	key := votePair{from: from, to: to}

	p.locksMutex.Lock()
	lock, exists := p.locks[key]
	if !exists {
		lock = &pairLock{}
		p.locks[key] = lock
	}
	lock.refs++
	p.locksMutex.Unlock()

	lock.mutex.Lock()

	return func() {
		lock.mutex.Unlock()

		p.locksMutex.Lock()
		defer p.locksMutex.Unlock()
		lock.refs--
		if lock.refs == 0 {
			delete(p.locks, key)
		}
	}
}

func (p *pairLocker) size() int {
	p.locksMutex.Lock()
	defer p.locksMutex.Unlock()

	return len(p.locks)
}
