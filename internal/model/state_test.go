package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquisitionState_Committed(t *testing.T) {
	s := NewAcquisitionState()
	assert.False(t, s.HasPriorRows())
	assert.Equal(t, LookbackYear, s.Lookback)

	s.Committed([]Record{{ID: "a1"}, {ID: "a2"}})
	assert.True(t, s.Has("a1"))
	assert.True(t, s.Has("a2"))
	assert.False(t, s.Has("a3"))
	assert.Equal(t, 4, s.AppendOffset)
	assert.True(t, s.HasPriorRows())
}
