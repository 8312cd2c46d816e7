package fastrand

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

func seed() int64 {
	var buf [8]byte
	n, err := crand.Read(buf[:])
	if n != 8 || err != nil {
		panic("invariant broken: crypto/rand.Read failed")
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// RandPool hands out *rand.Rand instances, each seeded with real
// randomness from crypto/rand. The pool is safe for use by concurrent
// goroutines; the sources it hands out are not, so every draw takes a
// source, uses it and returns it.
type RandPool struct {
	pool sync.Pool
}

// NewRandPool returns an empty RandPool. Sources are created lazily.
func NewRandPool() *RandPool {
	return &RandPool{
		pool: sync.Pool{
			New: func() interface{} {
				// nolint:gosec G404: identifiers need not be unpredictable
				return rand.New(rand.NewSource(seed()))
			},
		},
	}
}

func (p *RandPool) get() *rand.Rand {
	return p.pool.Get().(*rand.Rand)
}

func (p *RandPool) put(r *rand.Rand) {
	p.pool.Put(r)
}

// Uint64 returns a pseudo-random number covering the whole uint64 range.
func (p *RandPool) Uint64() uint64 {
	r := p.get()
	defer p.put(r)
	return r.Uint64()
}
