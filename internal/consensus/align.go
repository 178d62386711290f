package consensus

// alignScore computes the Needleman-Wunsch global alignment score of two
// peptide sequences under the given substitution matrix and a linear gap
// penalty (positive, subtracted per gap position).
func alignScore(a, b string, m *SubstitutionMatrix, penalty int) float64 {
	n, k := len(a), len(b)
	gap := float64(penalty)

	prev := make([]float64, k+1)
	cur := make([]float64, k+1)
	for j := 1; j <= k; j++ {
		prev[j] = prev[j-1] - gap
	}

	for i := 1; i <= n; i++ {
		cur[0] = prev[0] - gap
		for j := 1; j <= k; j++ {
			diag := prev[j-1] + m.Score(a[i-1], b[j-1])
			up := prev[j] - gap
			left := cur[j-1] - gap
			best := diag
			if up > best {
				best = up
			}
			if left > best {
				best = left
			}
			cur[j] = best
		}
		prev, cur = cur, prev
	}
	return prev[k]
}

// normalizedSimilarity maps an alignment score into [0, 1] by dividing by the
// smaller self-alignment score, clamping negatives to 0. Identical sequences
// score exactly 1.
func normalizedSimilarity(a, b string, m *SubstitutionMatrix, penalty int) float64 {
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	selfA := m.SelfScore(a)
	selfB := m.SelfScore(b)
	denom := selfA
	if selfB < denom {
		denom = selfB
	}
	if denom <= 0 {
		return 0
	}
	s := alignScore(a, b, m, penalty) / denom
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
