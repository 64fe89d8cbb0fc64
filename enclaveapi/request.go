package enclaveapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cloudx-io/openbrace/core"
)

var (
	// ErrInvalidRequest is returned when a request is structurally unusable.
	ErrInvalidRequest = errors.New("invalid auction request")

	// ErrUnknownGood is returned when an endowment or preference names an undeclared good.
	ErrUnknownGood = errors.New("unknown good")
)

// ToCore converts the request into core agents and goods, preserving request order.
func (r *AuctionRequest) ToCore() ([]*core.Agent, []core.Good, error) {
	if r.Epsilon < 0.0 {
		return nil, nil, fmt.Errorf("%w: negative epsilon %.4f", ErrInvalidRequest, r.Epsilon)
	}

	goods := make([]core.Good, 0, len(r.Goods))
	byID := make(map[string]core.Good, len(r.Goods))
	for i, spec := range r.Goods {
		if spec.ID == "" {
			return nil, nil, fmt.Errorf("%w: good %d has an empty id", ErrInvalidRequest, i)
		}
		if _, dup := byID[spec.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate good id %q", ErrInvalidRequest, spec.ID)
		}
		good := core.Good{ID: spec.ID, Name: spec.Name}
		byID[spec.ID] = good
		goods = append(goods, good)
	}

	agents := make([]*core.Agent, 0, len(r.Agents))
	seen := make(map[string]struct{}, len(r.Agents))
	for i, spec := range r.Agents {
		if spec.ID == "" {
			return nil, nil, fmt.Errorf("%w: agent %d has an empty id", ErrInvalidRequest, i)
		}
		if _, dup := seen[spec.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate agent id %q", ErrInvalidRequest, spec.ID)
		}
		seen[spec.ID] = struct{}{}

		endowment, err := resolveBundle(spec.Endowment, byID)
		if err != nil {
			return nil, nil, fmt.Errorf("agent %s endowment: %w", spec.ID, err)
		}

		agent := core.NewAgent(spec.ID, endowment)
		for j, p := range spec.Preferences {
			bundle, err := resolveBundle(p.Bundle, byID)
			if err != nil {
				return nil, nil, fmt.Errorf("agent %s preference %d: %w", spec.ID, j, err)
			}
			agent.AddPreference(bundle, p.Value)
		}
		agents = append(agents, agent)
	}

	return agents, goods, nil
}

func resolveBundle(ids []string, byID map[string]core.Good) (core.Bundle, error) {
	bundle := core.NewBundle()
	for _, id := range ids {
		good, ok := byID[id]
		if !ok {
			return core.Bundle{}, fmt.Errorf("%w: %q", ErrUnknownGood, id)
		}
		bundle.Add(good)
	}
	return bundle, nil
}

// LoadAuctionRequest reads a request from a YAML (.yaml, .yml) or JSON file.
// A request without an auction_id is given a random one.
func LoadAuctionRequest(path string) (*AuctionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read auction request: %w", err)
	}

	var req AuctionRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("parse auction request yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("parse auction request json: %w", err)
		}
	}

	if req.Type == "" {
		req.Type = RequestType
	}
	if req.AuctionID == "" {
		req.AuctionID = uuid.NewString()
	}

	return &req, nil
}
