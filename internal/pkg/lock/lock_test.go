package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemberLock_MutualExclusion(t *testing.T) {
	ml := NewMemberLock()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ml.Lock(1, 42)
			counter++
			ml.Unlock(1, 42)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestMemberLock_IndependentPerMember(t *testing.T) {
	ml := NewMemberLock()

	ml.Lock(1, 42)
	defer ml.Unlock(1, 42)

	// Same user in another chat and another user in the same chat are
	// separate rows and must not contend.
	assert.True(t, ml.TryLock(2, 42))
	ml.Unlock(2, 42)

	assert.True(t, ml.TryLock(1, 43))
	ml.Unlock(1, 43)

	// The held lock itself is not re-acquirable.
	assert.False(t, ml.TryLock(1, 42))
}

func TestMemberLock_WithLock(t *testing.T) {
	ml := NewMemberLock()

	called := false
	err := ml.WithLock(1, 42, func() error {
		called = true
		// The lock is held inside the callback.
		assert.False(t, ml.TryLock(1, 42))
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)

	// And released afterwards.
	assert.True(t, ml.TryLock(1, 42))
	ml.Unlock(1, 42)
}
