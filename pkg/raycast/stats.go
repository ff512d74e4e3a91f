package raycast

import "time"

// BatchStats counts the work done by one cast
type BatchStats struct {
	PrimaryRays int           // Camera rays traced
	ShadowRays  int           // Occlusion rays traced from primary hits
	Hits        int           // Primary rays that hit something
	Shadowed    int           // Shadow rays that were blocked
	Elapsed     time.Duration // Wall time of the whole cast
}

// Add merges the counts of another batch. Elapsed is not summed because
// batches run concurrently.
func (s BatchStats) Add(other BatchStats) BatchStats {
	s.PrimaryRays += other.PrimaryRays
	s.ShadowRays += other.ShadowRays
	s.Hits += other.Hits
	s.Shadowed += other.Shadowed
	s.Elapsed = max(s.Elapsed, other.Elapsed)
	return s
}

// Rays returns the total number of rays traced
func (s BatchStats) Rays() int {
	return s.PrimaryRays + s.ShadowRays
}

// RaysPerSecond returns the throughput, 0 if no time elapsed
func (s BatchStats) RaysPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Rays()) / s.Elapsed.Seconds()
}
