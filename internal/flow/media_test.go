package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedPairPolicy(t *testing.T) {
	p := policyFor(BranchFumigation)
	s := &Session{}

	res := p.Accept(s, PhotoRef{FileID: "a"})
	assert.Equal(t, photoWait, res.Outcome)
	assert.Contains(t, res.Message, "segunda foto")

	res = p.Finish(s)
	assert.Equal(t, photoRejected, res.Outcome)

	res = p.Accept(s, PhotoRef{FileID: "b"})
	assert.Equal(t, photoComplete, res.Outcome)
	assert.Len(t, s.Photos, 2)
}

func TestSentinelPolicy(t *testing.T) {
	p := policyFor(BranchNotices)
	s := &Session{}

	res := p.Finish(s)
	assert.Equal(t, photoRejected, res.Outcome)
	assert.Contains(t, res.Message, "al menos una foto")

	res = p.Accept(s, PhotoRef{FileID: "a"})
	assert.Equal(t, photoWait, res.Outcome)

	res = p.Accept(s, PhotoRef{FileID: "b"})
	assert.Equal(t, photoWait, res.Outcome)

	res = p.Finish(s)
	assert.Equal(t, photoComplete, res.Outcome)
	assert.Len(t, s.Photos, 2)
}

func TestSetCategoryDerivesAlternates(t *testing.T) {
	cases := []struct {
		pick string
		a, b string
	}{
		{"CISTERNA", "RESERVA", "INTERMEDIARIO"},
		{"RESERVA", "CISTERNA", "INTERMEDIARIO"},
		{"INTERMEDIARIO", "CISTERNA", "RESERVA"},
	}
	for _, tc := range cases {
		s := &Session{}
		s.setCategory(tc.pick)
		assert.Equal(t, tc.a, s.AltA, "pick %s", tc.pick)
		assert.Equal(t, tc.b, s.AltB, "pick %s", tc.pick)
	}
}
