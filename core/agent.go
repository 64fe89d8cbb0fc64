package core

import "sort"

// Agent is a participant holding an endowment and ordinal preferences over
// explicitly registered bundles. Any bundle that was never registered has
// preference 0.0.
type Agent struct {
	ID        string
	Endowment Bundle

	preferences map[bundleKey]float64
	bundles     []Bundle
}

// NewAgent creates an agent with the given endowment and an empty preference catalog.
func NewAgent(id string, endowment Bundle) *Agent {
	return &Agent{
		ID:          id,
		Endowment:   endowment.Clone(),
		preferences: make(map[bundleKey]float64),
		bundles:     make([]Bundle, 0),
	}
}

// AddPreference registers a bundle with its preference value.
// Registering the same set again overwrites the value but still appends the bundle to the catalog.
func (a *Agent) AddPreference(bundle Bundle, value float64) {
	if a.preferences == nil {
		a.preferences = make(map[bundleKey]float64)
	}
	a.preferences[keyOf(bundle)] = value
	a.bundles = append(a.bundles, bundle.Clone())
}

// Preference returns the agent's value for a bundle, 0.0 if unregistered.
func (a *Agent) Preference(bundle Bundle) float64 {
	value, _ := a.LookupPreference(bundle)
	return value
}

// LookupPreference returns the agent's value for a bundle and whether it was registered.
func (a *Agent) LookupPreference(bundle Bundle) (float64, bool) {
	value, ok := a.preferences[keyOf(bundle)]
	return value, ok
}

// Prefers reports whether the agent strictly prefers first over second.
// Equal values are indifference, not preference.
func (a *Agent) Prefers(first, second Bundle) bool {
	return a.Preference(first) > a.Preference(second)
}

// PreferenceBundles returns copies of the registered bundles in registration order.
func (a *Agent) PreferenceBundles() []Bundle {
	bundles := make([]Bundle, len(a.bundles))
	for i, b := range a.bundles {
		bundles[i] = b.Clone()
	}
	return bundles
}

// Allocation maps agent IDs to bundles. At most one bundle is held per agent.
// Feasibility is not enforced here; it is checked by the verifier.
type Allocation struct {
	assignments map[string]Bundle
}

// NewAllocation returns an empty allocation.
func NewAllocation() *Allocation {
	return &Allocation{assignments: make(map[string]Bundle)}
}

// Assign sets the bundle held by an agent, replacing any previous one.
func (a *Allocation) Assign(agentID string, bundle Bundle) {
	if a.assignments == nil {
		a.assignments = make(map[string]Bundle)
	}
	a.assignments[agentID] = bundle.Clone()
}

// Bundle returns a copy of the bundle held by an agent.
func (a *Allocation) Bundle(agentID string) (Bundle, bool) {
	b, ok := a.assignments[agentID]
	if !ok {
		return Bundle{}, false
	}
	return b.Clone(), true
}

// Len returns the number of agents with an assignment.
func (a *Allocation) Len() int {
	return len(a.assignments)
}

// AgentIDs returns the IDs of all assigned agents, sorted.
func (a *Allocation) AgentIDs() []string {
	ids := make([]string, 0, len(a.assignments))
	for id := range a.assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a copy whose bundles are independent of the original.
func (a *Allocation) Clone() *Allocation {
	c := &Allocation{assignments: make(map[string]Bundle, len(a.assignments))}
	for id, b := range a.assignments {
		c.assignments[id] = b.Clone()
	}
	return c
}
