package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphIsClosed(t *testing.T) {
	g := NewGraph()
	for id, node := range g.nodes {
		require.Equal(t, id, node.ID)
		require.NotNil(t, node.Next, "node %s has no successor", id)
		if !node.Terminal {
			require.NotNil(t, node.Prompt, "node %s has no prompt", id)
		}
		if node.FieldKey != "" {
			require.NotNil(t, node.Validate, "node %s stores %s without a validator", id, node.FieldKey)
		}
	}
}

func TestEveryStateHasAPredecessor(t *testing.T) {
	g := NewGraph()
	s := &Session{Branch: BranchTankService}
	for id := range g.nodes {
		if id == StateCode {
			continue
		}
		prev := g.PreviousState(id, s)
		assert.NotEqual(t, id, prev, "state %s resolves to itself", id)
		assert.NotNil(t, g.Node(prev), "state %s resolves to unknown predecessor %s", id, prev)
	}
}

func TestPreviousStateDependsOnBranch(t *testing.T) {
	g := NewGraph()
	cases := []struct {
		state  State
		branch Branch
		want   State
	}{
		{StateAddress, BranchBudget, StateService},
		{StateAddress, BranchTankService, StateOrder},
		{StateAddress, BranchFumigation, StateOrder},
		{StateStartTime, BranchNotices, StateNoticesAddress},
		{StateStartTime, BranchBudget, StateAddress},
		{StateOrder, BranchFumigation, StateScanQR},
		{StateOrder, BranchTankService, StateService},
		{StateContact, BranchFumigation, StateFumObs},
		{StateContact, BranchNotices, StateEndTime},
		{StateContact, BranchTankService, StateAskAlt2},
		{StatePhotos, BranchNotices, StateContact},
	}
	for _, tc := range cases {
		got := g.PreviousState(tc.state, &Session{Branch: tc.branch})
		assert.Equal(t, tc.want, got, "%s / %s", tc.state, tc.branch)
	}
}

func TestEndTimeBranchesPerService(t *testing.T) {
	g := NewGraph()
	node := g.Node(StateEndTime)
	require.NotNil(t, node)

	assert.Equal(t, StateFumigation, node.Next(&Session{Branch: BranchFumigation}, ""))
	assert.Equal(t, StateContact, node.Next(&Session{Branch: BranchNotices}, ""))
	assert.Equal(t, StateTankType, node.Next(&Session{Branch: BranchTankService}, ""))
	assert.Equal(t, StateTankType, node.Next(&Session{Branch: BranchBudget}, ""))
}

func TestTankTierChaining(t *testing.T) {
	g := NewGraph()
	s := &Session{}

	last := g.Node(tierState("suggestions", TierMain))
	require.NotNil(t, last)
	assert.Equal(t, StateAskAlt1, last.Next(s, ""))

	last = g.Node(tierState("suggestions", TierAlt1))
	assert.Equal(t, StateAskAlt2, last.Next(s, ""))

	last = g.Node(tierState("suggestions", TierAlt2))
	assert.Equal(t, StateContact, last.Next(s, ""))
}

func TestTierFieldKeys(t *testing.T) {
	assert.Equal(t, "measure_main", TierFieldKey("measure", TierMain))
	assert.Equal(t, "repairs", TierFieldKey("repair", TierMain))
	assert.Equal(t, "suggestions", TierFieldKey("suggestions", TierMain))
	assert.Equal(t, "repair_alt1", TierFieldKey("repair", TierAlt1))
	assert.Equal(t, "suggestions_alt2", TierFieldKey("suggestions", TierAlt2))
	assert.Equal(t, "sealing_alt1", TierFieldKey("sealing", TierAlt1))
}
