package schema

// Pool is an owned sequence of paths that selections consume without replacement.
// Methods never mutate the receiver's backing array; removal returns a new pool.
type Pool []Path

// Clone returns a deep copy of the pool.
func (p Pool) Clone() Pool {
	out := make(Pool, len(p))
	for i, path := range p {
		out[i] = path.Clone()
	}
	return out
}

// Remove drops the path at idx and returns the remaining pool and the removed path.
func (p Pool) Remove(idx int) (Pool, Path) {
	removed := p[idx]
	out := make(Pool, 0, len(p)-1)
	out = append(out, p[:idx]...)
	out = append(out, p[idx+1:]...)
	return out, removed
}

// RemovePair drops two paths. When both indexes are equal only one path is removed.
func (p Pool) RemovePair(i, j int) Pool {
	if i == j {
		out, _ := p.Remove(i)
		return out
	}
	if i < j {
		i, j = j, i
	}
	out, _ := p.Remove(i)
	out, _ = out.Remove(j)
	return out
}

// Index returns the position of the path with the given segments, or -1.
func (p Pool) Index(segments []string) int {
	for i, path := range p {
		if path.Matches(segments) {
			return i
		}
	}
	return -1
}

// IndexesOf returns the positions of paths classified as kind.
func (p Pool) IndexesOf(kind ValueKind) []int {
	out := make([]int, 0, len(p))
	for i, path := range p {
		if Classify(path) == kind {
			out = append(out, i)
		}
	}
	return out
}
