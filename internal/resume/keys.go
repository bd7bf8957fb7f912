package resume

import "sync"

// keyPool provides reusable byte slices for building Badger keys, avoiding an
// allocation on every checkpoint write on the download hot path.
var keyPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, 256)
		return &buf
	},
}

// buildKey constructs prefix+suffix in a pooled buffer. The returned slice is
// only valid until releaseKey is called; callers that need to keep the bytes
// (e.g. to pass across a Badger transaction boundary) must copy them first.
func buildKey(prefix, suffix string) []byte {
	bufPtr := keyPool.Get().(*[]byte)
	buf := (*bufPtr)[:0]
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	*bufPtr = buf
	return buf
}

// releaseKey returns a key buffer to the pool.
func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(&key)
	}
}
