package cmd

import (
	"testing"

	"github.com/iksnae/cursor-history/internal"
	"github.com/iksnae/cursor-history/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCommand_JSON(t *testing.T) {
	// Fixture timestamps date from 1970 and 2024
	out, err := executeWithStorage(t, "stats", "--days", "36500", "--group-by", "month", "--json")
	require.NoError(t, err)

	var result internal.StatisticsResult
	testutil.JSONUnmarshal(t, []byte(out), &result)
	assert.Equal(t, "36500 days", result.Period)
	assert.Equal(t, internal.GroupByMonth, result.GroupBy)

	s := result.Statistics
	require.NotNil(t, s)
	assert.Equal(t, 2, s.TotalConversations)
	assert.Equal(t, 5, s.TotalMessages)
	assert.Equal(t, 1, s.TotalLinesAdded)
	assert.Contains(t, s.LanguageStats, "ts")
	assert.Contains(t, s.WorkspaceStats, "/home/dev/webapp")
	assert.Contains(t, s.DailyStats, "2024-01-01")
	assert.Contains(t, s.PeriodStats, "2024-01")
	assert.Contains(t, s.PeriodStats, "1970-01")
}

func TestStatsCommand_DefaultWindow(t *testing.T) {
	out, err := executeWithStorage(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Code statistics for the last 30 days")
	assert.Contains(t, out, "Conversations: 0")
}

func TestStatsCommand_Table(t *testing.T) {
	out, err := executeWithStorage(t, "stats", "--days", "36500", "--group-by", "week")
	require.NoError(t, err)
	assert.Contains(t, out, "Conversations: 2")
	assert.Contains(t, out, "By extension")
	assert.Contains(t, out, "By week")
	assert.Contains(t, out, "2024-W01")
}

func TestStatsCommand_InvalidGroupBy(t *testing.T) {
	_, err := executeWithStorage(t, "stats", "--group-by", "year")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported group_by")
}
