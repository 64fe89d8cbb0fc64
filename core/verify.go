package core

// VerifyFeasibility reports whether no good is held by more than 1 + Epsilon agents.
// Unallocated goods are not checked.
func (m *Mechanism) VerifyFeasibility(allocation *Allocation, goods []Good) bool {
	return len(m.FeasibilityViolations(allocation, goods)) == 0
}

// FeasibilityViolations returns, in goods order, the IDs of goods held by more than 1 + Epsilon agents.
func (m *Mechanism) FeasibilityViolations(allocation *Allocation, goods []Good) []string {
	violations := make([]string, 0)
	for _, good := range goods {
		if float64(HolderCount(allocation, good.ID)) > 1.0+m.Epsilon {
			violations = append(violations, good.ID)
		}
	}
	return violations
}

// HolderCount returns how many allocated bundles contain the good.
func HolderCount(allocation *Allocation, goodID string) int {
	count := 0
	for _, bundle := range allocation.assignments {
		if bundle.ContainsID(goodID) {
			count++
		}
	}
	return count
}

// VerifyIndividualRationality reports whether no allocated agent strictly prefers its endowment.
// Indifference passes.
func (m *Mechanism) VerifyIndividualRationality(agents []*Agent, allocation *Allocation) bool {
	return len(m.RationalityViolations(agents, allocation)) == 0
}

// RationalityViolations returns, in agent order, the IDs of agents that strictly prefer their endowment.
func (*Mechanism) RationalityViolations(agents []*Agent, allocation *Allocation) []string {
	violations := make([]string, 0)
	for _, agent := range agents {
		bundle, ok := allocation.Bundle(agent.ID)
		if !ok {
			continue
		}
		if agent.Prefers(agent.Endowment, bundle) {
			violations = append(violations, agent.ID)
		}
	}
	return violations
}

// VerifyOrdinalEfficiency reports whether no pair of agents would both strictly gain by swapping bundles.
//
// This is a necessary condition for Pareto efficiency, not a sufficient one:
// reallocations among three or more agents are not considered.
func (m *Mechanism) VerifyOrdinalEfficiency(agents []*Agent, allocation *Allocation) bool {
	return len(m.EfficiencyViolations(agents, allocation)) == 0
}

// EfficiencyViolations returns the agent pairs, in scan order, for which a swap is mutually strictly better.
func (*Mechanism) EfficiencyViolations(agents []*Agent, allocation *Allocation) []AgentPair {
	violations := make([]AgentPair, 0)
	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			bi, okI := allocation.Bundle(agents[i].ID)
			bj, okJ := allocation.Bundle(agents[j].ID)
			if !okI || !okJ {
				continue
			}
			if agents[i].Prefers(bj, bi) && agents[j].Prefers(bi, bj) {
				violations = append(violations, AgentPair{First: agents[i].ID, Second: agents[j].ID})
			}
		}
	}
	return violations
}
