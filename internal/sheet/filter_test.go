package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterApply(t *testing.T) {
	records := []AccountRecord{
		{RowIndex: 2, Username: "alice", Source: "podcast", Status: "Ready"},
		{RowIndex: 3, Username: "bob", Source: "referral", Status: "Drafted"},
		{RowIndex: 4, Username: "alice", Source: "podcast", Status: "Ready"}, // duplicate
		{RowIndex: 5, Username: "carol", Source: "Podcast", Status: "Ready"},
		{RowIndex: 6, Username: "dave", Source: "ads", Status: "Ready"},
		{RowIndex: 7, Username: "", Source: "ads", Status: "Ready"},
	}

	t.Run("status exact match and dedupe", func(t *testing.T) {
		got := Filter{Status: "Ready"}.Apply(records)
		require.Len(t, got, 3)
		assert.Equal(t, []int{2, 5, 6}, []int{got[0].RowIndex, got[1].RowIndex, got[2].RowIndex})
	})

	t.Run("source narrows case-insensitively", func(t *testing.T) {
		got := Filter{Status: "Ready", Source: "podcast"}.Apply(records)
		require.Len(t, got, 2)
		assert.Equal(t, "alice", got[0].Username)
		assert.Equal(t, "carol", got[1].Username)
	})

	t.Run("cap stops early", func(t *testing.T) {
		got := Filter{Status: "Ready", Max: 1}.Apply(records)
		require.Len(t, got, 1)
		assert.Equal(t, "alice", got[0].Username)
	})

	t.Run("no matching status", func(t *testing.T) {
		assert.Empty(t, Filter{Status: "Archived"}.Apply(records))
	})
}
