package core

import "math"

const (
	// MaxPriceRounds caps the number of tâtonnement rounds.
	MaxPriceRounds = 1000

	// PriceStep is the increase applied to each good of a bundle that is not demanded.
	PriceStep = 0.1
)

// ComputeEquilibriumPrices runs an ascending price adjustment against a fixed allocation.
//
// Processing flow, per round:
//  1. For each agent in input order, compute the demand set at current prices
//  2. If the agent's allocated bundle is not in its demand set, add PriceStep
//     to the round delta of every good in that bundle
//  3. Stop without applying the deltas once the largest delta is below epsilon
//  4. Otherwise apply all deltas at once and start the next round
//
// Prices only ever rise. There is no mechanism to lower the price of a good
// whose holder wants less than it was allocated.
func ComputeEquilibriumPrices(agents []*Agent, goods []Good, allocation *Allocation, epsilon float64) *PriceVector {
	prices := NewPriceVector()
	for _, good := range goods {
		prices.SetPrice(good.ID, 0.0)
	}

	for round := 0; round < MaxPriceRounds; round++ {
		deltas := make(map[string]float64)
		// Goods in the order their first delta was recorded, so that applying
		// deltas never depends on map iteration order.
		touched := make([]string, 0)

		for _, agent := range agents {
			allocated, ok := allocation.Bundle(agent.ID)
			if !ok {
				continue
			}

			if inDemandSet(allocated, prices.DemandSet(agent)) {
				continue
			}

			for _, id := range allocated.IDs() {
				if _, seen := deltas[id]; !seen {
					touched = append(touched, id)
				}
				deltas[id] += PriceStep
			}
		}

		maxDelta := 0.0
		for _, id := range touched {
			maxDelta = math.Max(maxDelta, math.Abs(deltas[id]))
		}
		if maxDelta < epsilon {
			break
		}

		for _, id := range touched {
			prices.SetPrice(id, prices.Price(id)+deltas[id])
		}
	}

	return prices
}

// inDemandSet reports whether the bundle equals any bundle of the demand set.
func inDemandSet(bundle Bundle, demand []Bundle) bool {
	for _, d := range demand {
		if d.Equal(bundle) {
			return true
		}
	}
	return false
}
