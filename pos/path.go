package pos

// Backtrack recovers the n tags of the best path ending in end by following
// the trellis backpointers from the last position to the first.
func Backtrack(trellis *Trellis, n int, end Terminal) []string {
	if n == 0 {
		return []string{}
	}

	path := make([]int, n)
	path[n-1] = end.last
	if n > 1 {
		path[n-2] = end.prev
	}
	for k := n; k >= 3; k-- {
		path[k-3] = trellis.backpointer(k, path[k-2], path[k-1])
	}

	result := make([]string, n)
	for i, tagIdx := range path {
		result[i] = trellis.tags[tagIdx]
	}
	return result
}
