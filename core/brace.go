package core

// MaxAllocationRounds caps the number of pairwise swap rounds.
const MaxAllocationRounds = 100

// Mechanism is the budget-relaxed approximate competitive equilibrium (BRACE)
// mechanism. Epsilon is both the feasibility tolerance and the price
// convergence threshold.
type Mechanism struct {
	Epsilon float64
}

// NewMechanism creates a mechanism with the given tolerance.
func NewMechanism(epsilon float64) *Mechanism {
	return &Mechanism{Epsilon: epsilon}
}

// ComputeAllocation runs the bounded pairwise swap search and prices the result.
//
// Processing flow:
//  1. Start from the endowment allocation
//  2. Repeat rounds of pairwise full-bundle swaps, scanning pairs (i, j) with
//     i < j in agent input order, until a round commits no swap or
//     MaxAllocationRounds is reached
//  3. Compute equilibrium prices for the final allocation
//
// This is a local search, not an exact solver. Its result depends on agent input order.
func (m *Mechanism) ComputeAllocation(agents []*Agent, goods []Good) (*Allocation, *PriceVector) {
	allocation := NewAllocation()
	for _, agent := range agents {
		allocation.Assign(agent.ID, agent.Endowment)
	}

	// Carried through the rounds but not consulted by the swap decision.
	prices := NewPriceVector()
	for _, good := range goods {
		prices.SetPrice(good.ID, 0.0)
	}

	for round := 0; round < MaxAllocationRounds; round++ {
		if !m.improveAllocation(agents, allocation, prices) {
			break
		}
	}

	return allocation, ComputeEquilibriumPrices(agents, goods, allocation, m.Epsilon)
}

// improveAllocation performs one round of the swap search and reports whether any swap was committed.
// Committed swaps are applied immediately and are seen by later pairs in the same round.
func (m *Mechanism) improveAllocation(agents []*Agent, allocation *Allocation, prices *PriceVector) bool {
	improved := false

	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			proposed, ok := m.tryTrade(agents[i], agents[j], allocation, prices)
			if !ok {
				continue
			}
			if isParetoImproving(agents, allocation, proposed) {
				*allocation = *proposed
				improved = true
			}
		}
	}

	return improved
}

// tryTrade proposes swapping the full bundles of two agents.
// The proposal is returned only if both agents strictly prefer the other's bundle.
func (m *Mechanism) tryTrade(first, second *Agent, current *Allocation, _ *PriceVector) (*Allocation, bool) {
	firstBundle, ok := current.Bundle(first.ID)
	if !ok {
		return nil, false
	}
	secondBundle, ok := current.Bundle(second.ID)
	if !ok {
		return nil, false
	}

	if !first.Prefers(secondBundle, firstBundle) || !second.Prefers(firstBundle, secondBundle) {
		return nil, false
	}

	proposed := current.Clone()
	proposed.Assign(first.ID, secondBundle)
	proposed.Assign(second.ID, firstBundle)
	return proposed, true
}

// isParetoImproving reports whether moving from before to after leaves no agent
// strictly worse off and at least one agent strictly better off.
// Agents missing from either allocation are ignored.
func isParetoImproving(agents []*Agent, before, after *Allocation) bool {
	atLeastOneBetter := false

	for _, agent := range agents {
		oldBundle, hasOld := before.Bundle(agent.ID)
		newBundle, hasNew := after.Bundle(agent.ID)
		if !hasOld || !hasNew {
			continue
		}

		if agent.Prefers(newBundle, oldBundle) {
			atLeastOneBetter = true
		} else if agent.Prefers(oldBundle, newBundle) {
			return false
		}
	}

	return atLeastOneBetter
}
