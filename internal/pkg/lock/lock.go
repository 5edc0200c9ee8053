// Package lock provides per-member locking for concurrent balance
// operations. Each (chat, user) pair has its own economy row, so locks
// are keyed by the pair.
package lock

import "sync"

// Key identifies one member of one chat.
type Key struct {
	ChatID int64
	UserID int64
}

// memberMutex wraps a mutex with reference counting for pooling.
type memberMutex struct {
	mu       sync.Mutex
	refCount int
}

// MemberLock serializes balance-modifying operations on a single
// (chat, user) row so that a gift's read-check-write sequence never
// interleaves with another handler or the daily reset for that row.
type MemberLock struct {
	locks sync.Map // map[Key]*memberMutex
	pool  sync.Pool
}

// NewMemberLock creates a new MemberLock instance.
func NewMemberLock() *MemberLock {
	return &MemberLock{
		pool: sync.Pool{
			New: func() any {
				return &memberMutex{}
			},
		},
	}
}

func (ml *MemberLock) getLock(key Key) *memberMutex {
	if v, ok := ml.locks.Load(key); ok {
		return v.(*memberMutex)
	}

	newLock := ml.pool.Get().(*memberMutex)
	newLock.refCount = 0

	actual, loaded := ml.locks.LoadOrStore(key, newLock)
	if loaded {
		ml.pool.Put(newLock)
	}
	return actual.(*memberMutex)
}

// Lock acquires the lock for a chat member. Call before any
// balance-modifying operation on that member's row.
func (ml *MemberLock) Lock(chatID, userID int64) {
	lock := ml.getLock(Key{ChatID: chatID, UserID: userID})
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for a chat member.
func (ml *MemberLock) Unlock(chatID, userID int64) {
	if v, ok := ml.locks.Load(Key{ChatID: chatID, UserID: userID}); ok {
		lock := v.(*memberMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired.
func (ml *MemberLock) TryLock(chatID, userID int64) bool {
	lock := ml.getLock(Key{ChatID: chatID, UserID: userID})
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// WithLock executes a function while holding the member's lock.
func (ml *MemberLock) WithLock(chatID, userID int64, fn func() error) error {
	ml.Lock(chatID, userID)
	defer ml.Unlock(chatID, userID)
	return fn()
}
