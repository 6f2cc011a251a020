package partitions

import (
	"fmt"
	"math"
)

// Builder constructs a Layout for a flattened index range
type Builder struct {
	Total int // Size of the flattened range

	// Either an explicit partition count, or a target size from which the
	// count is derived. NumPartitions wins when both are set.
	NumPartitions       int
	TargetPartitionSize int
}

// BuildPartitions creates a static layout of equal contiguous chunks
func (pb *Builder) BuildPartitions() (*Layout, error) {
	if pb.Total < 0 {
		return nil, fmt.Errorf("negative range size %d", pb.Total)
	}

	partitions := blockPartition(pb.Total, pb.calculateNumPartitions())

	layout := &Layout{
		Partitions:    partitions,
		KpartMax:      calculateKpartMax(partitions),
		Total:         pb.Total,
		NumPartitions: len(partitions),
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}

	return layout, nil
}

// calculateNumPartitions determines the partition count
func (pb *Builder) calculateNumPartitions() int {
	numPartitions := pb.NumPartitions
	if numPartitions <= 0 && pb.TargetPartitionSize > 0 {
		numPartitions = int(math.Ceil(float64(pb.Total) / float64(pb.TargetPartitionSize)))
	}

	// Ensure at least one partition, and no empty ones
	if numPartitions > pb.Total {
		numPartitions = pb.Total
	}
	if numPartitions < 1 {
		numPartitions = 1
	}

	return numPartitions
}

// blockPartition splits [0, n) into parts chunks with begin = n*p/parts, so
// sizes differ by at most one.
func blockPartition(n, parts int) []Partition {
	partitions := make([]Partition, parts)
	for p := 0; p < parts; p++ {
		begin := int(int64(n) * int64(p) / int64(parts))
		end := int(int64(n) * int64(p+1) / int64(parts))
		partitions[p] = Partition{
			ID:    p,
			Start: begin,
			Count: end - begin,
		}
	}
	return partitions
}

// calculateKpartMax finds the largest partition
func calculateKpartMax(partitions []Partition) int {
	kpartMax := 0
	for _, p := range partitions {
		if p.Count > kpartMax {
			kpartMax = p.Count
		}
	}
	return kpartMax
}
