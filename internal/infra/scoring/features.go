package scoring

import (
	"crypto/sha256"
	"math/big"

	"scoreoracle/internal/domain"
)

// DeriveFeatures reduces the sha256 digest of a subject identifier into the
// activity ranges the model was trained on. The digest is the only input, so
// a subject always derives the same vector.
func DeriveFeatures(subject string) domain.FeatureVector {
	sum := sha256.Sum256([]byte(subject))
	h := new(big.Int).SetBytes(sum[:])
	return domain.FeatureVector{
		{Name: "tx_count", Value: 10 + float64(digestMod(h, 500))},
		{Name: "avg_tx_size_ada", Value: 50 + float64(digestMod(h, 100))/10.0},
		{Name: "days_staked", Value: 30 + float64(digestMod(h, 365))},
		{Name: "tx_freq_daily", Value: float64(digestMod(h, 50)) / 100.0},
	}
}

func digestMod(h *big.Int, m int64) int64 {
	return new(big.Int).Mod(h, big.NewInt(m)).Int64()
}
