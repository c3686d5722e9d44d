package vm

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// Reading ranges, inclusive.
const (
	CPUMin, CPUMax         = 10, 39
	RAMMin, RAMMax         = 20, 59
	NetworkMin, NetworkMax = 50, 149
)

// Sampler produces synthetic readings. Not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler; a nil source uses a random seed.
func NewSampler(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Sampler{rng: rand.New(src)}
}

// Sample returns one reading.
func (s *Sampler) Sample() types.Stats {
	return types.Stats{
		CPU:     CPUMin + s.rng.IntN(CPUMax-CPUMin+1),
		RAM:     RAMMin + s.rng.IntN(RAMMax-RAMMin+1),
		Network: NetworkMin + s.rng.IntN(NetworkMax-NetworkMin+1),
	}
}

// History keeps the last N readings.
type History struct {
	size    int
	samples []types.Stats
}

// NewHistory creates a history holding at most size readings.
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{size: size, samples: make([]types.Stats, 0, size)}
}

// Add appends a reading, evicting the oldest when full.
func (h *History) Add(s types.Stats) {
	if len(h.samples) == h.size {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:h.size-1]
	}
	h.samples = append(h.samples, s)
}

// Reset drops all readings.
func (h *History) Reset() {
	h.samples = h.samples[:0]
}

// Len returns the number of readings held.
func (h *History) Len() int {
	return len(h.samples)
}

// Averages returns the mean of each reading over the window.
func (h *History) Averages() types.StatsAverages {
	n := len(h.samples)
	if n == 0 {
		return types.StatsAverages{}
	}

	cpu := make([]float64, n)
	ram := make([]float64, n)
	net := make([]float64, n)
	for i, s := range h.samples {
		cpu[i] = float64(s.CPU)
		ram[i] = float64(s.RAM)
		net[i] = float64(s.Network)
	}

	return types.StatsAverages{
		CPU:     stat.Mean(cpu, nil),
		RAM:     stat.Mean(ram, nil),
		Network: stat.Mean(net, nil),
		Samples: n,
	}
}
