package core

// Good represents an indivisible item that can be allocated.
// Identity is the ID; Name is only used for display.
type Good struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuctionResult contains the complete results of running a combinatorial auction.
type AuctionResult struct {
	// Allocation maps each agent to its final bundle
	Allocation *Allocation

	// Prices holds the supporting price per good ID
	Prices map[string]float64

	// TotalWelfare is the sum of each agent's preference value for its final bundle
	TotalWelfare float64

	IsFeasible             bool
	IsIndividuallyRational bool
	IsOrdinalEfficient     bool
}

// AgentPair identifies two agents by ID, in input order.
type AgentPair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}
