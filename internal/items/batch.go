package items

// Partition splits work into consecutive batches of at most size elements.
// Batch k holds work[k*size : min((k+1)*size, len(work))]. A non-positive size
// is treated as 1. Empty input yields no batches.
func Partition[T any](work []T, size int) [][]T {
	if len(work) == 0 {
		return nil
	}
	if size <= 0 {
		size = 1
	}
	batches := make([][]T, 0, (len(work)+size-1)/size)
	for start := 0; start < len(work); start += size {
		end := min(start+size, len(work))
		batches = append(batches, work[start:end:end])
	}
	return batches
}
