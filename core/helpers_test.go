package core

import "testing"

var (
	goodA = Good{ID: "A", Name: "Good A"}
	goodB = Good{ID: "B", Name: "Good B"}
	goodC = Good{ID: "C", Name: "Good C"}
)

// newTestAgent builds an agent whose endowment and preferences are given by good slices.
func newTestAgent(t *testing.T, id string, endowment []Good, prefs ...testPreference) *Agent {
	t.Helper()
	agent := NewAgent(id, NewBundle(endowment...))
	for _, p := range prefs {
		agent.AddPreference(NewBundle(p.goods...), p.value)
	}
	return agent
}

type testPreference struct {
	goods []Good
	value float64
}

func pref(value float64, goods ...Good) testPreference {
	return testPreference{goods: goods, value: value}
}

// twoAgentScenario: both agents want {A,B}, a full swap gives each an unregistered singleton.
func twoAgentScenario(t *testing.T) ([]*Agent, []Good) {
	t.Helper()
	agent1 := newTestAgent(t, "Agent1", []Good{goodA},
		pref(10.0, goodA, goodB),
		pref(5.0, goodA),
	)
	agent2 := newTestAgent(t, "Agent2", []Good{goodB},
		pref(8.0, goodA, goodB),
		pref(4.0, goodB),
	)
	return []*Agent{agent1, agent2}, []Good{goodA, goodB}
}

// threeAgentScenario: each agent holds one good and only values pairs plus its own singleton.
func threeAgentScenario(t *testing.T) ([]*Agent, []Good) {
	t.Helper()
	agent1 := newTestAgent(t, "Agent1", []Good{goodA},
		pref(10.0, goodB, goodC),
		pref(7.0, goodA, goodB),
		pref(5.0, goodA),
	)
	agent2 := newTestAgent(t, "Agent2", []Good{goodB},
		pref(12.0, goodA, goodC),
		pref(8.0, goodB, goodC),
		pref(4.0, goodB),
	)
	agent3 := newTestAgent(t, "Agent3", []Good{goodC},
		pref(9.0, goodA, goodB),
		pref(6.0, goodA, goodC),
		pref(3.0, goodC),
	)
	return []*Agent{agent1, agent2, agent3}, []Good{goodA, goodB, goodC}
}

// chainScenario: the second swap of round one only becomes possible after the first is committed.
func chainScenario(t *testing.T) ([]*Agent, []Good) {
	t.Helper()
	agent1 := newTestAgent(t, "Agent1", []Good{goodA},
		pref(5.0, goodB),
		pref(10.0, goodC),
		pref(1.0, goodA),
	)
	agent2 := newTestAgent(t, "Agent2", []Good{goodB},
		pref(5.0, goodA),
		pref(1.0, goodC),
		pref(2.0, goodB),
	)
	agent3 := newTestAgent(t, "Agent3", []Good{goodC},
		pref(5.0, goodB),
		pref(1.0, goodC),
		pref(0.0, goodA),
	)
	return []*Agent{agent1, agent2, agent3}, []Good{goodA, goodB, goodC}
}

func bundleIDs(t *testing.T, allocation *Allocation, agentID string) []string {
	t.Helper()
	bundle, ok := allocation.Bundle(agentID)
	if !ok {
		t.Fatalf("agent %s has no allocation", agentID)
	}
	return bundle.IDs()
}
