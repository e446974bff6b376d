package service

import "sync"

// userLocks hands out one RWMutex per user. Writes to a user's graph hold the
// write side for a whole batch; reads share the read side. An entry lives only
// while some caller holds or waits on it, so the set never outgrows the number
// of users with an operation in flight.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.RWMutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

func (l *userLocks) acquire(userID string) *userLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[userID]
	if !ok {
		e = &userLock{}
		l.locks[userID] = e
	}
	e.refs++
	return e
}

func (l *userLocks) release(userID string, e *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, userID)
	}
}

// lock takes the write side for userID and returns its unlock func.
func (l *userLocks) lock(userID string) func() {
	e := l.acquire(userID)
	e.Lock()
	return func() {
		e.Unlock()
		l.release(userID, e)
	}
}

// rlock takes the read side for userID and returns its unlock func.
func (l *userLocks) rlock(userID string) func() {
	e := l.acquire(userID)
	e.RLock()
	return func() {
		e.RUnlock()
		l.release(userID, e)
	}
}

func (l *userLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
