package domain

import "math/rand/v2"

// DefaultSampleSize is the number of suggestions shown at once.
const DefaultSampleSize = 5

// Sample draws min(n, len(pool)) tweets uniformly at random without
// replacement using a partial Fisher-Yates shuffle. pool is not modified.
func Sample(rng *rand.Rand, pool []Tweet, n int) []Tweet {
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return []Tweet{}
	}

	shuffled := make([]Tweet, len(pool))
	copy(shuffled, pool)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n:n]
}
