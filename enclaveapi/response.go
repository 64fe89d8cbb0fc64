package enclaveapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/cloudx-io/openbrace/core"
)

// NewAuctionResponse builds a successful response from a core result.
// Allocation entries follow agent input order; prices are rounded for reporting.
func NewAuctionResponse(req *AuctionRequest, agents []*core.Agent, result *core.AuctionResult) AuctionResponse {
	allocation := make([]AllocationEntry, 0, len(agents))
	for _, agent := range agents {
		bundle, ok := result.Allocation.Bundle(agent.ID)
		if !ok {
			continue
		}
		allocation = append(allocation, AllocationEntry{
			AgentID: agent.ID,
			Goods:   bundle.IDs(),
		})
	}

	return AuctionResponse{
		Type:                   ResponseType,
		Success:                true,
		Message:                fmt.Sprintf("Allocated %d goods among %d agents", len(req.Goods), len(agents)),
		AuctionID:              req.AuctionID,
		RunID:                  uuid.NewString(),
		Allocation:             allocation,
		Prices:                 core.RoundPrices(result.Prices),
		TotalWelfare:           result.TotalWelfare,
		IsFeasible:             result.IsFeasible,
		IsIndividuallyRational: result.IsIndividuallyRational,
		IsOrdinalEfficient:     result.IsOrdinalEfficient,
	}
}

// NewFailureResponse builds an unsuccessful response carrying only the reason.
func NewFailureResponse(auctionID, message string) AuctionResponse {
	return AuctionResponse{
		Type:      ResponseType,
		Success:   false,
		Message:   message,
		AuctionID: auctionID,
	}
}

// CoreAllocation rebuilds the claimed allocation against the declared goods.
func (r *AuctionResponse) CoreAllocation(goods []core.Good) (*core.Allocation, error) {
	byID := make(map[string]core.Good, len(goods))
	for _, good := range goods {
		byID[good.ID] = good
	}

	allocation := core.NewAllocation()
	for _, entry := range r.Allocation {
		bundle, err := resolveBundle(entry.Goods, byID)
		if err != nil {
			return nil, fmt.Errorf("allocation for agent %s: %w", entry.AgentID, err)
		}
		allocation.Assign(entry.AgentID, bundle)
	}
	return allocation, nil
}

var responseEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor encode mode: %v", err))
	}
	return em
}()

// EncodeResponseCBOR encodes a response as deterministic CBOR with integer keys.
func EncodeResponseCBOR(resp *AuctionResponse) ([]byte, error) {
	data, err := responseEncMode.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response cbor: %w", err)
	}
	return data, nil
}

// DecodeResponseCBOR decodes a response produced by EncodeResponseCBOR.
func DecodeResponseCBOR(data []byte) (*AuctionResponse, error) {
	var resp AuctionResponse
	if err := cbor.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode response cbor: %w", err)
	}
	return &resp, nil
}

// LoadAuctionResponse reads a response from a .cbor file, or JSON otherwise.
func LoadAuctionResponse(path string) (*AuctionResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read auction response: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".cbor" {
		return DecodeResponseCBOR(data)
	}

	var resp AuctionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse auction response json: %w", err)
	}
	return &resp, nil
}
