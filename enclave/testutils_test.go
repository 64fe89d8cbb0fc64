package enclave

import (
	"encoding/json"
	"fmt"
	"testing"

	nitro "github.com/edgebitio/nitro-enclaves-sdk-go"
	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/openbrace/enclaveapi"
)

// MockEnclaveHandle implements the Attest method for testing
type MockEnclaveHandle struct {
	AttestFunc func(options nitro.AttestationOptions) ([]byte, error)
}

func (m *MockEnclaveHandle) Attest(options nitro.AttestationOptions) ([]byte, error) {
	if m.AttestFunc != nil {
		return m.AttestFunc(options)
	}
	return nil, fmt.Errorf("mock not configured")
}

// CreateMockEnclave returns an attester that wraps the user data in an unsigned Nitro-shaped document
func CreateMockEnclave(t *testing.T) *MockEnclaveHandle {
	t.Helper()
	return &MockEnclaveHandle{
		AttestFunc: func(options nitro.AttestationOptions) ([]byte, error) {
			nestedDoc := map[string]any{
				"module_id": "test-enclave-12345",
				"digest":    "SHA384",
				"timestamp": uint64(1234567890),
				"pcrs": map[uint64][]byte{
					0: {0x3b, 0x4c},
					1: {0x4b, 0x4d},
					2: {0x2b, 0xdd},
				},
				"certificate": []byte("test-certificate-data"),
				"cabundle":    [][]byte{[]byte("test-ca-cert")},
				"public_key":  []byte("test-public-key-data"),
				"user_data":   options.UserData,
				"nonce":       options.Nonce,
			}

			nestedBytes, _ := cbor.Marshal(nestedDoc)

			// [header, metadata, nested_doc, signature]
			result := []any{
				[]byte{0x01, 0x02, 0x03},
				map[string]any{},
				nestedBytes,
				[]byte{0x04, 0x05, 0x06},
			}

			return cbor.Marshal(result)
		},
	}
}

// parseAuctionAttestationFromResponse decodes the response attestation and its user data
func parseAuctionAttestationFromResponse(t *testing.T, response enclaveapi.AuctionResponse) *enclaveapi.AuctionAttestationDoc {
	t.Helper()

	if response.AttestationCOSEBase64 == "" {
		return nil
	}

	coseBytes, err := response.AttestationCOSEBase64.Decode()
	if err != nil {
		t.Fatalf("Failed to decode attestation: %v", err)
	}

	doc, err := coseBytes.ParseAuctionAttestation()
	if err != nil {
		t.Fatalf("Failed to parse attestation: %v", err)
	}
	if doc.UserData == nil {
		t.Fatalf("Attestation has no user data")
	}
	return doc
}

func mustUserData(t *testing.T, coseBytes enclaveapi.AttestationCOSE) enclaveapi.AuctionAttestationUserData {
	t.Helper()
	_, raw, err := coseBytes.ParseAttestationDoc()
	if err != nil {
		t.Fatalf("Failed to parse attestation: %v", err)
	}
	var userData enclaveapi.AuctionAttestationUserData
	if err := json.Unmarshal(raw, &userData); err != nil {
		t.Fatalf("Failed to unmarshal user data: %v", err)
	}
	return userData
}

func twoAgentRequest() enclaveapi.AuctionRequest {
	return enclaveapi.AuctionRequest{
		Type:      enclaveapi.RequestType,
		AuctionID: "test_auction_two_agents",
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
		AuctionID: "test_auction_swap",
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
