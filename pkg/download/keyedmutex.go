package download

import "sync"

// keyedMutex serializes work per cache key. Two concurrent Ensure calls for
// the same content hash take turns: the first fetches, the second re-checks
// the cache under the lock and turns into a hit instead of a second transfer.
type keyedMutex struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{held: map[string]chan struct{}{}}
}

// Lock blocks until the key is free and returns the unlock function.
func (k *keyedMutex) Lock(key string) func() {
	for {
		k.mu.Lock()
		wait, taken := k.held[key]
		if !taken {
			released := make(chan struct{})
			k.held[key] = released
			k.mu.Unlock()
			return func() {
				k.mu.Lock()
				delete(k.held, key)
				close(released)
				k.mu.Unlock()
			}
		}
		k.mu.Unlock()
		// wait for the holder to release (signalled by close), then retry;
		// another waiter may still beat us to the key
		<-wait
	}
}
