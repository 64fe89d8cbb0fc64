package core

import "math"

// demandTolerance is the absolute tolerance for treating two net utilities as tied.
const demandTolerance = 1e-9

// PriceVector holds per-good prices keyed by good ID. Unknown goods are priced at 0.0.
type PriceVector struct {
	prices map[string]float64
}

// NewPriceVector returns an empty price vector.
func NewPriceVector() *PriceVector {
	return &PriceVector{prices: make(map[string]float64)}
}

// PriceVectorFromMap builds a price vector from a copy of the given map.
func PriceVectorFromMap(prices map[string]float64) *PriceVector {
	pv := &PriceVector{prices: make(map[string]float64, len(prices))}
	for id, p := range prices {
		pv.prices[id] = p
	}
	return pv
}

// SetPrice sets the price of a good.
func (pv *PriceVector) SetPrice(goodID string, price float64) {
	pv.prices[goodID] = price
}

// Price returns the price of a good, 0.0 if unknown.
func (pv *PriceVector) Price(goodID string) float64 {
	return pv.prices[goodID]
}

// LookupPrice returns the price of a good and whether it has been set.
func (pv *PriceVector) LookupPrice(goodID string) (float64, bool) {
	p, ok := pv.prices[goodID]
	return p, ok
}

// BundlePrice is the sum of the prices of the goods in the bundle.
func (pv *PriceVector) BundlePrice(bundle Bundle) float64 {
	total := 0.0
	for _, id := range bundle.IDs() {
		total += pv.Price(id)
	}
	return total
}

// NetUtility is the agent's preference for the bundle minus its price.
func (pv *PriceVector) NetUtility(agent *Agent, bundle Bundle) float64 {
	return agent.Preference(bundle) - pv.BundlePrice(bundle)
}

// DemandSet returns the registered bundles that maximize the agent's net utility
// at the current prices. Every bundle within demandTolerance of the maximum is
// included, in catalog order, so the set does not depend on which near-tie is
// registered first.
// Only the agent's explicit catalog is scanned, never the power set of goods.
func (pv *PriceVector) DemandSet(agent *Agent) []Bundle {
	catalog := agent.PreferenceBundles()
	utilities := make([]float64, len(catalog))

	best := math.Inf(-1)
	for i, bundle := range catalog {
		utilities[i] = pv.NetUtility(agent, bundle)
		best = math.Max(best, utilities[i])
	}

	demand := make([]Bundle, 0)
	for i, bundle := range catalog {
		if math.Abs(utilities[i]-best) < demandTolerance {
			demand = append(demand, bundle)
		}
	}

	return demand
}

// AllPrices returns a copy of every price set on the vector.
func (pv *PriceVector) AllPrices() map[string]float64 {
	out := make(map[string]float64, len(pv.prices))
	for id, p := range pv.prices {
		out[id] = p
	}
	return out
}
