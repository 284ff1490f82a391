package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var statusNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNextStatus(t *testing.T) {
	future := statusNow.Add(24 * time.Hour)
	past := statusNow.Add(-24 * time.Hour)

	cases := []struct {
		name     string
		status   string
		current  float64
		target   float64
		deadline time.Time
		want     string
	}{
		{"active below target", CampaignActive, 50, 100, future, CampaignActive},
		{"active at target", CampaignActive, 100, 100, future, CampaignCompleted},
		{"active over target", CampaignActive, 150, 100, future, CampaignCompleted},
		{"active past deadline", CampaignActive, 50, 100, past, CampaignCancelled},
		// target reached wins over an expired deadline
		{"at target and expired", CampaignActive, 100, 100, past, CampaignCompleted},
		// terminal states absorb
		{"completed stays completed", CampaignCompleted, 100, 100, past, CampaignCompleted},
		{"cancelled stays cancelled at target", CampaignCancelled, 100, 100, future, CampaignCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextStatus(tc.status, tc.current, tc.target, tc.deadline, statusNow)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestComputeDerived(t *testing.T) {
	c := &Campaign{
		TargetAmount:  200,
		CurrentAmount: 50,
		Deadline:      statusNow.Add(72 * time.Hour),
	}
	c.ComputeDerived(statusNow)
	require.Equal(t, 25.0, c.Progress)
	require.Equal(t, 3, c.DaysLeft)
}

func TestComputeDerivedClamps(t *testing.T) {
	c := &Campaign{
		TargetAmount:  100,
		CurrentAmount: 250,
		Deadline:      statusNow.Add(-48 * time.Hour),
	}
	c.ComputeDerived(statusNow)
	require.Equal(t, 100.0, c.Progress)
	require.Zero(t, c.DaysLeft)

	// zero target never divides
	z := &Campaign{TargetAmount: 0, CurrentAmount: 10, Deadline: statusNow}
	z.ComputeDerived(statusNow)
	require.Zero(t, z.Progress)
}
