package enclaveapi

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func twoAgentRequest() *AuctionRequest {
	return &AuctionRequest{
		Type:      RequestType,
		AuctionID: "auction-two-agents",
		Epsilon:   0.01,
		Goods: []GoodSpec{
			{ID: "A", Name: "Good A"},
			{ID: "B", Name: "Good B"},
		},
		Agents: []AgentSpec{
			{
				ID:        "Agent1",
				Endowment: []string{"A"},
				Preferences: []PreferenceSpec{
					{Bundle: []string{"A", "B"}, Value: 10.0},
					{Bundle: []string{"A"}, Value: 5.0},
				},
			},
			{
				ID:        "Agent2",
				Endowment: []string{"B"},
				Preferences: []PreferenceSpec{
					{Bundle: []string{"B", "A"}, Value: 8.0},
					{Bundle: []string{"B"}, Value: 4.0},
				},
			},
		},
	}
}

func TestAuctionRequest_ToCore(t *testing.T) {
	req := twoAgentRequest()

	agents, goods, err := req.ToCore()
	assert.NoError(t, err)

	check.Equal(t, 2, len(goods))
	check.Equal(t, "A", goods[0].ID)
	check.Equal(t, "Good B", goods[1].Name)

	check.Equal(t, 2, len(agents))
	check.Equal(t, "Agent1", agents[0].ID)
	check.Equal(t, "Agent2", agents[1].ID)
	check.Equal(t, []string{"A"}, agents[0].Endowment.IDs())

	bundles := agents[1].PreferenceBundles()
	check.Equal(t, 2, len(bundles))
	check.Equal(t, []string{"A", "B"}, bundles[0].IDs())
	check.Equal(t, 8.0, agents[1].Preference(bundles[0]))
	check.Equal(t, 4.0, agents[1].Preference(bundles[1]))
}

func TestAuctionRequest_ToCore_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AuctionRequest)
		target error
	}{
		{
			name:   "negative epsilon",
			mutate: func(r *AuctionRequest) { r.Epsilon = -0.5 },
			target: ErrInvalidRequest,
		},
		{
			name:   "empty good id",
			mutate: func(r *AuctionRequest) { r.Goods[1].ID = "" },
			target: ErrInvalidRequest,
		},
		{
			name:   "duplicate good id",
			mutate: func(r *AuctionRequest) { r.Goods[1].ID = "A" },
			target: ErrInvalidRequest,
		},
		{
			name:   "empty agent id",
			mutate: func(r *AuctionRequest) { r.Agents[0].ID = "" },
			target: ErrInvalidRequest,
		},
		{
			name:   "duplicate agent id",
			mutate: func(r *AuctionRequest) { r.Agents[1].ID = "Agent1" },
			target: ErrInvalidRequest,
		},
		{
			name:   "unknown endowment good",
			mutate: func(r *AuctionRequest) { r.Agents[0].Endowment = []string{"Z"} },
			target: ErrUnknownGood,
		},
		{
			name:   "unknown preference good",
			mutate: func(r *AuctionRequest) { r.Agents[1].Preferences[0].Bundle = []string{"A", "Z"} },
			target: ErrUnknownGood,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := twoAgentRequest()
			tt.mutate(req)

			agents, goods, err := req.ToCore()
			check.Error(t, err)
			check.True(t, errors.Is(err, tt.target))
			check.Nil(t, agents)
			check.Nil(t, goods)
		})
	}
}

func TestAuctionRequest_ToCore_Empty(t *testing.T) {
	req := &AuctionRequest{}

	agents, goods, err := req.ToCore()
	assert.NoError(t, err)
	check.Equal(t, 0, len(agents))
	check.Equal(t, 0, len(goods))
}

const yamlRequest = `type: auction_request
auction_id: auction-yaml
epsilon: 0.05
goods:
  - id: A
    name: Good A
  - id: B
agents:
  - id: Agent1
    endowment: [A]
    preferences:
      - bundle: [A, B]
        value: 10
      - bundle: [A]
        value: 5
  - id: Agent2
    endowment: [B]
    preferences:
      - bundle: [B]
        value: 4
`

const jsonRequest = `{
  "type": "auction_request",
  "epsilon": 0.01,
  "goods": [{"id": "A"}],
  "agents": [{"id": "Agent1", "endowment": ["A"], "preferences": [{"bundle": ["A"], "value": 5}]}]
}`

func TestLoadAuctionRequest_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(yamlRequest), 0o600))

	req, err := LoadAuctionRequest(path)
	assert.NoError(t, err)

	check.Equal(t, "auction-yaml", req.AuctionID)
	check.Equal(t, 0.05, req.Epsilon)
	check.Equal(t, 2, len(req.Goods))
	check.Equal(t, "", req.Goods[1].Name)
	check.Equal(t, 2, len(req.Agents))
	check.Equal(t, []string{"A", "B"}, req.Agents[0].Preferences[0].Bundle)
	check.Equal(t, 10.0, req.Agents[0].Preferences[0].Value)
}

func TestLoadAuctionRequest_JSONAssignsAuctionID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	assert.NoError(t, os.WriteFile(path, []byte(jsonRequest), 0o600))

	req, err := LoadAuctionRequest(path)
	assert.NoError(t, err)

	_, parseErr := uuid.Parse(req.AuctionID)
	check.NoError(t, parseErr)
	check.Equal(t, RequestType, req.Type)
	check.Equal(t, 1, len(req.Agents))
}

func TestLoadAuctionRequest_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadAuctionRequest(filepath.Join(dir, "missing.json"))
	check.Error(t, err)

	badJSON := filepath.Join(dir, "bad.json")
	assert.NoError(t, os.WriteFile(badJSON, []byte("{not json"), 0o600))
	_, err = LoadAuctionRequest(badJSON)
	check.Error(t, err)

	badYAML := filepath.Join(dir, "bad.yml")
	assert.NoError(t, os.WriteFile(badYAML, []byte("goods: [unclosed"), 0o600))
	_, err = LoadAuctionRequest(badYAML)
	check.Error(t, err)
}
