package partitions

import "fmt"

// Partition is a contiguous run of a flattened index range that executes
// as one unit of work.
type Partition struct {
	ID    int
	Start int // First index owned by this partition
	Count int // Number of indices owned
}

// End returns one past the last index owned by the partition
func (p Partition) End() int {
	return p.Start + p.Count
}

// Layout is a static decomposition of [0, Total) into contiguous partitions.
// Partitions are ordered, disjoint and cover the range exactly.
type Layout struct {
	Partitions []Partition

	// Global sizing information
	KpartMax      int // max(Count) across all partitions, inner loop bound for device kernels
	Total         int // Sum of all partition counts
	NumPartitions int
}

// NewLayout splits [0, total) into parts equal contiguous chunks. Chunk
// sizes differ by at most one. parts is clamped to [1, total].
func NewLayout(total, parts int) *Layout {
	b := &Builder{Total: total, NumPartitions: parts}
	layout, err := b.BuildPartitions()
	if err != nil {
		panic(err)
	}
	return layout
}

// Counts returns partition sizes, the K array handed to device kernels
func (pl *Layout) Counts() []int64 {
	counts := make([]int64, len(pl.Partitions))
	for i, p := range pl.Partitions {
		counts[i] = int64(p.Count)
	}
	return counts
}

// Starts returns partition start offsets for device kernels
func (pl *Layout) Starts() []int64 {
	starts := make([]int64, len(pl.Partitions))
	for i, p := range pl.Partitions {
		starts[i] = int64(p.Start)
	}
	return starts
}

// ValidateLayout checks partition consistency
func (pl *Layout) ValidateLayout() error {
	if pl.NumPartitions != len(pl.Partitions) {
		return fmt.Errorf("NumPartitions %d != len(Partitions) %d",
			pl.NumPartitions, len(pl.Partitions))
	}

	next := 0
	actualMax := 0
	for i, p := range pl.Partitions {
		if p.ID != i {
			return fmt.Errorf("partition %d: ID %d out of order", i, p.ID)
		}
		if p.Start != next {
			return fmt.Errorf("partition %d: starts at %d, expected %d (gap or overlap)",
				i, p.Start, next)
		}
		if p.Count < 0 {
			return fmt.Errorf("partition %d: negative count %d", i, p.Count)
		}
		next = p.End()
		if p.Count > actualMax {
			actualMax = p.Count
		}
	}
	if next != pl.Total {
		return fmt.Errorf("partitions cover [0, %d), expected [0, %d)", next, pl.Total)
	}
	if actualMax != pl.KpartMax {
		return fmt.Errorf("computed KpartMax %d != stored KpartMax %d",
			actualMax, pl.KpartMax)
	}
	return nil
}
