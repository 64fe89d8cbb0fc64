package core

// CombinatorialAuction runs the BRACE mechanism over a fixed set of agents and goods.
type CombinatorialAuction struct {
	agents    []*Agent
	goods     []Good
	mechanism *Mechanism
}

// NewCombinatorialAuction creates an auction. The order of agents is significant:
// it fixes the pair scan order of the allocation search.
func NewCombinatorialAuction(agents []*Agent, goods []Good, epsilon float64) *CombinatorialAuction {
	return &CombinatorialAuction{
		agents:    agents,
		goods:     goods,
		mechanism: NewMechanism(epsilon),
	}
}

// Run executes the auction: allocation search → equilibrium prices → property checks.
//
// Returns:
//   - AuctionResult with the allocation, prices, total welfare and the three property flags
//
// Degenerate input (no agents, no goods, empty catalogs) yields the identity
// allocation, all-zero prices and vacuously true properties.
func (ca *CombinatorialAuction) Run() *AuctionResult {
	allocation, prices := ca.mechanism.ComputeAllocation(ca.agents, ca.goods)

	return &AuctionResult{
		Allocation:             allocation,
		Prices:                 prices.AllPrices(),
		TotalWelfare:           TotalWelfare(ca.agents, allocation),
		IsFeasible:             ca.mechanism.VerifyFeasibility(allocation, ca.goods),
		IsIndividuallyRational: ca.mechanism.VerifyIndividualRationality(ca.agents, allocation),
		IsOrdinalEfficient:     ca.mechanism.VerifyOrdinalEfficiency(ca.agents, allocation),
	}
}

// TotalWelfare sums each agent's preference for its allocated bundle.
// Agents without an allocation contribute 0.
func TotalWelfare(agents []*Agent, allocation *Allocation) float64 {
	total := 0.0
	for _, agent := range agents {
		if bundle, ok := allocation.Bundle(agent.ID); ok {
			total += agent.Preference(bundle)
		}
	}
	return total
}

// Agents returns the participating agents in input order.
func (ca *CombinatorialAuction) Agents() []*Agent {
	return ca.agents
}

// Goods returns the auctioned goods in input order.
func (ca *CombinatorialAuction) Goods() []Good {
	return ca.goods
}

// Epsilon returns the mechanism's approximation parameter.
func (ca *CombinatorialAuction) Epsilon() float64 {
	return ca.mechanism.Epsilon
}
