package core

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// ComputeAllocationHash computes the allocation digest embedded in result attestations.
// This is used by both the attester (to generate hashes) and validation (to verify hashes).
//
// Formula: SHA256(nonce + "|" + sorted_assignments)
// where sorted_assignments = "agent1:A,B|agent2:C|..." (agents sorted by ID, goods sorted by ID)
func ComputeAllocationHash(allocation *Allocation, nonce string) string {
	var sb strings.Builder
	sb.WriteString(nonce)

	for _, agentID := range allocation.AgentIDs() {
		bundle, _ := allocation.Bundle(agentID)
		sb.WriteString(fmt.Sprintf("|%s:%s", agentID, strings.Join(bundle.IDs(), ",")))
	}

	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%x", hash)
}

// ComputePricesHash computes the price vector digest embedded in result attestations.
//
// Formula: SHA256(nonce + "|" + sorted_key_value_pairs)
// where sorted_key_value_pairs = "good1:price1|good2:price2|..." (sorted by good ID)
//
// Prices are formatted to exactly 6 decimal places for consistent hashing.
func ComputePricesHash(prices map[string]float64, nonce string) string {
	data := nonce

	goodIDs := make([]string, 0, len(prices))
	for id := range prices {
		goodIDs = append(goodIDs, id)
	}
	sort.Strings(goodIDs)

	for _, id := range goodIDs {
		data += fmt.Sprintf("|%s:%.6f", id, prices[id])
	}
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ComputeRequestHash computes the auction request hash over every input the
// mechanism reads.
//
// Formula: SHA256(auction_id + "|" + sprintf("%.6f", epsilon) + "|goods:" + good_ids + agents + "|" + nonce)
// where each agent adds "|agent:id:endowment_ids:prefs" and prefs = "A,B=10.000000;A=5.000000;..."
//
// Goods, agents and preferences keep their input order. Endowment and bundle IDs are sorted.
func ComputeRequestHash(auctionID string, epsilon float64, agents []*Agent, goods []Good, nonce string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s|%.6f", auctionID, epsilon))

	goodIDs := make([]string, 0, len(goods))
	for _, g := range goods {
		goodIDs = append(goodIDs, g.ID)
	}
	sb.WriteString("|goods:" + strings.Join(goodIDs, ","))

	for _, agent := range agents {
		prefs := make([]string, 0)
		for _, bundle := range agent.PreferenceBundles() {
			prefs = append(prefs, fmt.Sprintf("%s=%.6f", strings.Join(bundle.IDs(), ","), agent.Preference(bundle)))
		}
		sb.WriteString(fmt.Sprintf("|agent:%s:%s:%s", agent.ID, strings.Join(agent.Endowment.IDs(), ","), strings.Join(prefs, ";")))
	}

	sb.WriteString("|" + nonce)
	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%x", hash)
}
