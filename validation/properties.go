package validation

import (
	"fmt"
	"sort"

	"github.com/cloudx-io/openbrace/core"
	enclaveapi "github.com/cloudx-io/openbrace/enclaveapi"
)

// ResultValidationInput is a claimed result together with the problem it claims to solve
type ResultValidationInput struct {
	Agents   []*core.Agent
	Goods    []core.Good
	Epsilon  float64
	Response *enclaveapi.AuctionResponse
}

// NewResultValidationInput converts the request and pairs it with the claimed response
func NewResultValidationInput(req *enclaveapi.AuctionRequest, resp *enclaveapi.AuctionResponse) (*ResultValidationInput, error) {
	agents, goods, err := req.ToCore()
	if err != nil {
		return nil, fmt.Errorf("convert request: %w", err)
	}
	return &ResultValidationInput{
		Agents:   agents,
		Goods:    goods,
		Epsilon:  req.Epsilon,
		Response: resp,
	}, nil
}

// ValidateAuctionResult re-derives every property of a claimed result and verifies:
// - Every agent has exactly one allocation entry and no stranger does
// - Rerunning the mechanism reproduces the allocation
// - Feasibility, individual rationality and ordinal efficiency hold
// - Welfare and prices recompute to the claimed values at reporting precision
// - The claimed property flags match the recomputed ones
//
// Returns:
//   - PropertyValidationResult with detailed results (call result.IsValid() to check overall status)
//   - error if validation cannot be performed (e.g., missing response, undeclared goods)
func ValidateAuctionResult(input *ResultValidationInput) (*PropertyValidationResult, error) {
	if input == nil || input.Response == nil {
		return nil, fmt.Errorf("missing auction response")
	}
	resp := input.Response

	allocation, err := resp.CoreAllocation(input.Goods)
	if err != nil {
		return nil, fmt.Errorf("rebuild claimed allocation: %w", err)
	}

	result := &PropertyValidationResult{
		ValidationDetails: []string{},
	}
	mechanism := core.NewMechanism(input.Epsilon)

	result.CoverageValid = validateCoverage(input.Agents, resp.Allocation, result)
	result.ReproducedValid = validateReproduction(input, allocation, result)

	feasibility := mechanism.FeasibilityViolations(allocation, input.Goods)
	for _, goodID := range feasibility {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Good %s held by %d agents (limit %.4f)",
			goodID, core.HolderCount(allocation, goodID), 1.0+input.Epsilon))
	}
	result.FeasibilityValid = len(feasibility) == 0

	rationality := mechanism.RationalityViolations(input.Agents, allocation)
	for _, agentID := range rationality {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Agent %s strictly prefers its endowment", agentID))
	}
	result.IndividuallyRationalValid = len(rationality) == 0

	efficiency := mechanism.EfficiencyViolations(input.Agents, allocation)
	for _, pair := range efficiency {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Agents %s and %s would both gain by swapping", pair.First, pair.Second))
	}
	result.OrdinalEfficiencyValid = len(efficiency) == 0

	if result.FeasibilityValid && result.IndividuallyRationalValid && result.OrdinalEfficiencyValid {
		result.ValidationDetails = append(result.ValidationDetails, "Feasibility, individual rationality and ordinal efficiency hold")
	}

	welfare := core.TotalWelfare(input.Agents, allocation)
	if core.AmountsMatch(welfare, resp.TotalWelfare) {
		result.WelfareValid = true
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Total welfare verified: %.4f", welfare))
	} else {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Total welfare mismatch: computed %.4f, claimed %.4f", welfare, resp.TotalWelfare))
	}

	result.PricesValid = validatePrices(input, allocation, result)

	result.ClaimsConsistent = validateClaims(resp, result)

	return result, nil
}

func validateCoverage(agents []*core.Agent, entries []enclaveapi.AllocationEntry, result *PropertyValidationResult) bool {
	known := make(map[string]bool, len(agents))
	for _, agent := range agents {
		known[agent.ID] = false
	}

	valid := true
	for _, entry := range entries {
		covered, ok := known[entry.AgentID]
		if !ok {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Allocation names unknown agent %s", entry.AgentID))
			valid = false
			continue
		}
		if covered {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Agent %s has more than one allocation entry", entry.AgentID))
			valid = false
			continue
		}
		known[entry.AgentID] = true
	}

	for _, agent := range agents {
		if !known[agent.ID] {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Agent %s has no allocation entry", agent.ID))
			valid = false
		}
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Allocation covers all %d agents", len(agents)))
	}
	return valid
}

func validateReproduction(input *ResultValidationInput, claimed *core.Allocation, result *PropertyValidationResult) bool {
	rerun, _ := core.NewMechanism(input.Epsilon).ComputeAllocation(input.Agents, input.Goods)

	valid := true
	for _, agent := range input.Agents {
		expected, _ := rerun.Bundle(agent.ID)
		got, ok := claimed.Bundle(agent.ID)
		if !ok || !got.Equal(expected) {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Agent %s: mechanism allocates %s, claimed %s",
				agent.ID, expected.String(), got.String()))
			valid = false
		}
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, "Allocation reproduced by rerunning the mechanism")
	}
	return valid
}

func validatePrices(input *ResultValidationInput, allocation *core.Allocation, result *PropertyValidationResult) bool {
	computed := core.RoundPrices(core.ComputeEquilibriumPrices(input.Agents, input.Goods, allocation, input.Epsilon).AllPrices())
	claimed := input.Response.Prices

	valid := true
	for _, good := range input.Goods {
		claimedPrice, ok := claimed[good.ID]
		if !ok {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Price for good %s missing", good.ID))
			valid = false
			continue
		}
		if !core.AmountsMatch(computed[good.ID], claimedPrice) {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Price mismatch for good %s: computed %.4f, claimed %.4f",
				good.ID, computed[good.ID], claimedPrice))
			valid = false
		}
	}

	extra := make([]string, 0)
	for goodID := range claimed {
		if _, ok := computed[goodID]; !ok {
			extra = append(extra, goodID)
		}
	}
	sort.Strings(extra)
	for _, goodID := range extra {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Price claimed for undeclared good %s", goodID))
		valid = false
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Prices verified for %d goods", len(input.Goods)))
	}
	return valid
}

func validateClaims(resp *enclaveapi.AuctionResponse, result *PropertyValidationResult) bool {
	claims := []struct {
		name     string
		claimed  bool
		computed bool
	}{
		{name: "is_feasible", claimed: resp.IsFeasible, computed: result.FeasibilityValid},
		{name: "is_individually_rational", claimed: resp.IsIndividuallyRational, computed: result.IndividuallyRationalValid},
		{name: "is_ordinal_efficient", claimed: resp.IsOrdinalEfficient, computed: result.OrdinalEfficiencyValid},
	}

	valid := true
	for _, c := range claims {
		if c.claimed != c.computed {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Claim %s=%t contradicts recomputed %t", c.name, c.claimed, c.computed))
			valid = false
		}
	}
	if valid {
		result.ValidationDetails = append(result.ValidationDetails, "Claimed property flags match")
	}
	return valid
}
