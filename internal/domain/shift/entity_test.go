package shift

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRosterUnmarshalShapes(t *testing.T) {
	t.Run("tagged entry list", func(t *testing.T) {
		var r TeamRoster
		err := json.Unmarshal([]byte(`[{"name":"김감독","role":"감독"},{"name":"최영상","role":"영상"}]`), &r)
		require.NoError(t, err)
		assert.True(t, r.Tagged)
		require.Len(t, r.Entries, 2)
		assert.Equal(t, Member{Name: "김감독", Role: "감독"}, r.Entries[0])
	})

	t.Run("ordered name list", func(t *testing.T) {
		var r TeamRoster
		err := json.Unmarshal([]byte(`["김감독","박부감","최영상"]`), &r)
		require.NoError(t, err)
		assert.False(t, r.Tagged)
		require.Len(t, r.Entries, 3)
		assert.Equal(t, "박부감", r.Entries[1].Name)
		assert.Empty(t, r.Entries[1].Role)
	})

	t.Run("role keyed object", func(t *testing.T) {
		var r TeamRoster
		err := json.Unmarshal([]byte(`{"감독":"김감독","부감독":"박부감","영상":"최영상"}`), &r)
		require.NoError(t, err)
		assert.True(t, r.Tagged)
		require.Len(t, r.Entries, 3)
		// Entries come out in fixed role order
		assert.Equal(t, "감독", r.Entries[0].Role)
		assert.Equal(t, "부감독", r.Entries[1].Role)
		assert.Equal(t, "영상", r.Entries[2].Role)
	})

	t.Run("malformed shapes rejected", func(t *testing.T) {
		for _, raw := range []string{`42`, `"name"`, `[1,2,3]`, `[{"role":"감독"}]`} {
			var r TeamRoster
			assert.Error(t, json.Unmarshal([]byte(raw), &r), "input: %s", raw)
		}
	})
}

func TestTeamRosterMarshalRoundTrip(t *testing.T) {
	tagged := TeamRoster{Tagged: true, Entries: []Member{{Name: "김감독", Role: "감독"}}}
	data, err := json.Marshal(tagged)
	require.NoError(t, err)

	var back TeamRoster
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tagged, back)

	names := TeamRoster{Entries: []Member{{Name: "김감독"}, {Name: "박부감"}}}
	data, err = json.Marshal(names)
	require.NoError(t, err)
	assert.JSONEq(t, `["김감독","박부감"]`, string(data))
}

func TestPatternConfigValidate(t *testing.T) {
	valid := PatternConfig{
		CycleLength: 2,
		Pattern: []DailyPattern{
			{Day: 0, DayShift: Slot{Team: "1조"}, NightShift: Slot{Team: "2조"}},
			{Day: 1, DayShift: Slot{Team: "2조"}, NightShift: Slot{Team: "1조"}},
		},
	}
	assert.NoError(t, valid.Validate())

	zeroCycle := valid
	zeroCycle.CycleLength = 0
	zeroCycle.Pattern = nil
	assert.ErrorIs(t, zeroCycle.Validate(), ErrInvalidCycleLength)

	short := valid
	short.Pattern = short.Pattern[:1]
	assert.ErrorIs(t, short.Validate(), ErrPatternLengthMismatch)

	duplicate := valid
	duplicate.Pattern = []DailyPattern{
		{Day: 0, DayShift: Slot{Team: "1조"}},
		{Day: 0, DayShift: Slot{Team: "2조"}},
	}
	assert.ErrorIs(t, duplicate.Validate(), ErrPatternLengthMismatch)
}

func TestShiftTypeLabel(t *testing.T) {
	assert.Equal(t, "주간", ShiftTypeDay.Label())
	assert.Equal(t, "야간", ShiftTypeNight.Label())
	assert.Equal(t, "휴무", ShiftTypeNone.Label())
}
