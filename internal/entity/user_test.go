package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFromXP(t *testing.T) {
	tests := []struct {
		xp    int64
		level int
	}{
		{xp: -10, level: 1},
		{xp: 0, level: 1},
		{xp: 99, level: 1},
		{xp: 100, level: 2},
		{xp: 399, level: 2},
		{xp: 400, level: 3},
		{xp: 1600, level: 5},
		{xp: 8100, level: 10},
		{xp: 19600, level: 15},
	}

	for _, tt := range tests {
		require.Equal(t, tt.level, LevelFromXP(tt.xp), "xp=%d", tt.xp)
	}
}

func TestTierFromLevel(t *testing.T) {
	require.Equal(t, PassportTierBronze, TierFromLevel(1))
	require.Equal(t, PassportTierBronze, TierFromLevel(4))
	require.Equal(t, PassportTierSilver, TierFromLevel(5))
	require.Equal(t, PassportTierSilver, TierFromLevel(9))
	require.Equal(t, PassportTierGold, TierFromLevel(10))
	require.Equal(t, PassportTierGold, TierFromLevel(14))
	require.Equal(t, PassportTierPlatinum, TierFromLevel(15))
	require.Equal(t, PassportTierPlatinum, TierFromLevel(40))
}

func TestLevelAndTierAreMonotonic(t *testing.T) {
	prevLevel := LevelFromXP(0)
	prevTier := TierFromLevel(prevLevel)
	for xp := int64(0); xp <= 30000; xp += 37 {
		level := LevelFromXP(xp)
		tier := TierFromLevel(level)

		require.GreaterOrEqual(t, level, prevLevel)
		require.Equal(t, tier, HigherTier(prevTier, tier))

		prevLevel, prevTier = level, tier
	}
}

func TestHigherTier(t *testing.T) {
	require.Equal(t, PassportTierGold, HigherTier(PassportTierGold, PassportTierSilver))
	require.Equal(t, PassportTierGold, HigherTier(PassportTierSilver, PassportTierGold))
	require.Equal(t, PassportTierBronze, HigherTier(PassportTierBronze, PassportTierBronze))
}

func TestXPForLevel(t *testing.T) {
	require.Equal(t, int64(0), XPForLevel(1))
	for level := 2; level <= 20; level++ {
		xp := XPForLevel(level)
		require.Equal(t, level, LevelFromXP(xp), "level=%d", level)
		require.Equal(t, level-1, LevelFromXP(xp-1), "level=%d", level)
	}
}

func TestDirectRewardKey(t *testing.T) {
	rewardKey := DirectRewardKey("quest_token")
	require.Equal(t, "direct:quest_token", rewardKey)

	key, ok := ParseDirectRewardKey(rewardKey)
	require.True(t, ok)
	require.Equal(t, "quest_token", key)

	_, ok = ParseDirectRewardKey("quest_token")
	require.False(t, ok)
}
