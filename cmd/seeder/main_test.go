package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEvent(t *testing.T) {
	ev := buildEvent(7, 2, 3, 4)

	assert.Equal(t, 7, ev.ID)
	assert.Len(t, ev.Rounds, 2)
	assert.Equal(t, 6, ev.MatchCount())

	decided := 0
	seen := map[int]bool{}
	for _, r := range ev.Rounds {
		for _, m := range r.Matches {
			assert.False(t, seen[m.ID], "duplicate match id %d", m.ID)
			seen[m.ID] = true
			assert.NotEqual(t, m.SideOne, m.SideTwo)
			if m.Decided() {
				decided++
				assert.True(t, m.Outcome.Valid())
			}
		}
	}
	assert.Equal(t, 4, decided)
}
