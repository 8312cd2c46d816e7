package fastrand

var globalPool = NewRandPool()

// Uint64 draws from a process-wide RandPool.
func Uint64() uint64 {
	return globalPool.Uint64()
}
