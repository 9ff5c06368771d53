package rng

// VectorRNG is a random generator of observation vectors
type VectorRNG interface {
	Rand() []float64
}
