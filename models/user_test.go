package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int
		level  string
	}{
		{0, LevelBronze},
		{999, LevelBronze},
		{1000, LevelSilver},
		{4999, LevelSilver},
		{5000, LevelGold},
		{9999, LevelGold},
		{10000, LevelPlatinum},
		{250000, LevelPlatinum},
	}
	for _, tc := range cases {
		require.Equal(t, tc.level, LevelForPoints(tc.points), "points=%d", tc.points)
	}
}

func TestLevelNeverDowngradesAsPointsGrow(t *testing.T) {
	rank := map[string]int{
		LevelBronze:   0,
		LevelSilver:   1,
		LevelGold:     2,
		LevelPlatinum: 3,
	}
	prev := rank[LevelForPoints(0)]
	for points := PointsPerDonation; points <= 12000; points += PointsPerDonation {
		current := rank[LevelForPoints(points)]
		require.GreaterOrEqual(t, current, prev, "points=%d", points)
		prev = current
	}
}
