package bvh

import "time"

// Stats describes a finished build. It is returned by Build rather than
// accumulated anywhere global, so callers aggregate it themselves.
type Stats struct {
	Items        int           // Items partitioned
	Nodes        int           // Total nodes (internal + leaf)
	Leaves       int           // Leaf nodes
	MaxDepth     int           // Deepest leaf, root is depth 0
	MaxLeafSize  int           // Largest leaf item count
	SAHSplits    int           // Internal nodes split by the SAH sweep
	MedianSplits int           // Internal nodes split by the median fallback
	ForcedLeaves int           // Leaves emitted only because of the depth limit
	BuildTime    time.Duration // Wall time spent in Build
}

// Add merges another build's counts, used when aggregating nested trees
func (s Stats) Add(other Stats) Stats {
	s.Items += other.Items
	s.Nodes += other.Nodes
	s.Leaves += other.Leaves
	s.MaxDepth = max(s.MaxDepth, other.MaxDepth)
	s.MaxLeafSize = max(s.MaxLeafSize, other.MaxLeafSize)
	s.SAHSplits += other.SAHSplits
	s.MedianSplits += other.MedianSplits
	s.ForcedLeaves += other.ForcedLeaves
	s.BuildTime += other.BuildTime
	return s
}
