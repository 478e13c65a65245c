package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlayerDeploysAvatarsInOrder(t *testing.T) {
	now := time.Unix(1700000000, 0)
	p := NewPlayer(7, "Trailblazer", []uint32{8001, 1309, 1001, 1002, 1003}, now)

	require.Len(t, p.Lineup.Avatars, MaxLineupSize)
	for n, a := range p.Lineup.Avatars {
		assert.Equal(t, uint32(n), a.Slot)
		assert.Equal(t, uint32(FullHp), a.Hp)
	}
	leader, ok := p.Lineup.Leader()
	require.True(t, ok)
	assert.Equal(t, uint32(8001), leader.AvatarID)
	assert.Equal(t, now, p.LastLogin)
}

func TestCloneDoesNotShareLineup(t *testing.T) {
	p := NewPlayer(7, "x", []uint32{8001}, time.Now())
	c := p.Clone()
	c.Lineup.Avatars[0].AvatarID = 1

	assert.Equal(t, uint32(8001), p.Lineup.Avatars[0].AvatarID)
}

func TestLeaderMissing(t *testing.T) {
	_, ok := Lineup{LeaderSlot: 2, Avatars: []LineupAvatar{{AvatarID: 1, Slot: 0}}}.Leader()
	assert.False(t, ok)
}
