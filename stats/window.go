package stats

import "sync"

// IntWindow keeps a sliding window of the most recent samples.
// When the window is full, the oldest samples are discarded to
// leave space for new ones. It is safe for concurrent use
type IntWindow struct {
	mu         sync.Mutex
	offset     uint32
	end        uint32
	maxSamples uint32
	total      uint64
	window     []int64
}

// NewIntWindow creates a new window that holds at most
// maxSamples samples
func NewIntWindow(maxSamples uint32) *IntWindow {
	return &IntWindow{
		offset:     0,
		end:        0,
		maxSamples: maxSamples,
		window:     make([]int64, maxSamples<<1),
	}
}

// Add a new sample to the window, shifting the window
// if maxSamples has been exceeded
func (w *IntWindow) Add(sample int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.total++
	w.window[w.end] = sample
	w.end++

	winlen := len(w.window)
	if w.end == uint32(winlen) {
		// once w.end gets to the end of the window, copy
		// w.maxSamples to the beginning of the window
		// and reset the indices
		index := uint32(winlen) - w.maxSamples
		copy(w.window, w.window[index:])
		w.offset = 0
		w.end = w.maxSamples
	}

	// if the window exceeds the number of max samples
	// allowed, recalculate the indices
	if w.end-w.offset > w.maxSamples {
		w.offset = w.end - w.maxSamples
	}
}

// Stats returns the aggregated view of the current window along
// with the total number of samples observed so far
func (w *IntWindow) Stats() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Metrics{
		"avg":   IntAverage(w.window[w.offset:w.end]),
		"total": w.total,
	}
}
