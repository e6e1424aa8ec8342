// Package mempool pools the grayscale pixel buffers used on the decode hot
// path, so per-frame conversion does not allocate width*height bytes every
// call.
package mempool

import "sync"

// key: size class (int), value: *sync.Pool of []byte
var bytePools sync.Map

// sizeClass rounds n up to the next multiple of 64KiB so buffers for
// same-resolution frames share a pool.
func sizeClass(n int) int {
	const step = 64 * 1024
	if n <= step {
		return step
	}
	r := (n + step - 1) / step
	return r * step
}

// GetBytes retrieves a []byte buffer of at least n bytes from the pool. The
// returned slice has length n; contents are not zeroed. The caller must
// return it via PutBytes when done.
func GetBytes(n int) []byte {
	cls := sizeClass(n)
	pAny, _ := bytePools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]byte, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return make([]byte, n)
	}
	buf, ok := p.Get().([]byte)
	if !ok || cap(buf) < n {
		buf = make([]byte, cls)
	}
	return buf[:n]
}

// PutBytes returns a buffer to the pool. Safe to pass nil.
func PutBytes(buf []byte) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := bytePools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]byte, cls) }})
	if p, ok := pAny.(*sync.Pool); ok {
		p.Put(buf[:cap(buf)]) //nolint:staticcheck
	}
}
