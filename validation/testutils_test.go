package validation

import (
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"

	"github.com/cloudx-io/openbrace/enclave"
	enclaveapi "github.com/cloudx-io/openbrace/enclaveapi"
)

func twoAgentRequest() enclaveapi.AuctionRequest {
	return enclaveapi.AuctionRequest{
		Type:      enclaveapi.RequestType,
		AuctionID: "validation_two_agents",
		Epsilon:   0.01,
		Goods:     []enclaveapi.GoodSpec{{ID: "A"}, {ID: "B"}},
		Agents: []enclaveapi.AgentSpec{
			{
				ID:        "Agent1",
				Endowment: []string{"A"},
				Preferences: []enclaveapi.PreferenceSpec{
					{Bundle: []string{"A", "B"}, Value: 10.0},
					{Bundle: []string{"A"}, Value: 5.0},
				},
			},
			{
				ID:        "Agent2",
				Endowment: []string{"B"},
				Preferences: []enclaveapi.PreferenceSpec{
					{Bundle: []string{"A", "B"}, Value: 8.0},
					{Bundle: []string{"B"}, Value: 4.0},
				},
			},
		},
	}
}

func swapRequest() enclaveapi.AuctionRequest {
	return enclaveapi.AuctionRequest{
		Type:      enclaveapi.RequestType,
		AuctionID: "validation_swap",
		Epsilon:   0.01,
		Goods:     []enclaveapi.GoodSpec{{ID: "A"}, {ID: "B"}},
		Agents: []enclaveapi.AgentSpec{
			{
				ID:        "Agent1",
				Endowment: []string{"A"},
				Preferences: []enclaveapi.PreferenceSpec{
					{Bundle: []string{"B"}, Value: 5.0},
					{Bundle: []string{"A"}, Value: 1.0},
				},
			},
			{
				ID:        "Agent2",
				Endowment: []string{"B"},
				Preferences: []enclaveapi.PreferenceSpec{
					{Bundle: []string{"A"}, Value: 5.0},
					{Bundle: []string{"B"}, Value: 1.0},
				},
			},
		},
	}
}

// attestedRun processes the request with a fresh local attester
func attestedRun(t *testing.T, req enclaveapi.AuctionRequest) (*enclave.LocalAttester, enclaveapi.AuctionResponse) {
	t.Helper()

	attester, err := enclave.NewLocalAttester()
	assert.NoError(t, err)

	resp := enclave.ProcessAuction(attester, req)
	assert.True(t, resp.Success)
	assert.True(t, resp.AttestationCOSEBase64 != "")
	return attester, resp
}

// localPCRs trusts the all-zero measurements a local attester reports
func localPCRs() []PCRSet {
	zero := strings.Repeat("0", 96)
	return []PCRSet{{PCR0: zero, PCR1: zero, PCR2: zero, CommitHash: "local"}}
}
