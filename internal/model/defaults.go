package model

// CopyDefaults are user-configured default parameters for copy runs,
// typically loaded from a config file and overridable by CLI flags.
type CopyDefaults struct {
	// SliceCount is the default number of slices. 0 means unset.
	SliceCount int
	// SliceSize is the default target slice size in bytes. 0 means unset.
	SliceSize int64
	// Concurrency is the default worker limit. 0 means unset.
	Concurrency int
	// ChunkSize is the default read/write block size in bytes. 0 means unset.
	ChunkSize int64
	// NoHistory disables run history recording by default.
	NoHistory bool
}
