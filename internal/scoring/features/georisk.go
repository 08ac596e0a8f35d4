package features

import (
	"hash/fnv"
	"math/rand"
)

// GeoRiskProvider scores the riskiness of a merchant location on [0, 1].
// Production deployments plug in a real geolocation intelligence service.
type GeoRiskProvider interface {
	RiskFor(merchantLocation string) float64
}

// HashedGeoRisk derives a stable pseudo-random risk score from the location
// string. The same location always yields the same score, which keeps scoring
// deterministic across processes without an external geo service.
type HashedGeoRisk struct{}

func (HashedGeoRisk) RiskFor(merchantLocation string) float64 {
	if merchantLocation == "" {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(merchantLocation))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	return rng.Float64()
}
