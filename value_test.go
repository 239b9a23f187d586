package stepcadence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSONRoundTrip(t *testing.T) {
	tests := map[string]struct {
		in   Value
		wire string
	}{
		"present": {Present(850), `{"category":"All","users_with_data":0,"users_without_data":0,"total_valid_days":0,"median_daily_steps":850,"mean_valid_days":0}`},
		"missing": {Missing(), `{"category":"All","users_with_data":0,"users_without_data":0,"total_valid_days":0,"median_daily_steps":null,"mean_valid_days":0}`},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(CohortSummary{Category: CategoryAll, MedianOfMedians: tt.in})
			require.NoError(t, err)
			assert.JSONEq(t, tt.wire, string(data))

			var got CohortSummary
			require.NoError(t, json.Unmarshal(data, &got))
			assert.True(t, tt.in.Equal(got.MedianOfMedians), "got %v want %v", got.MedianOfMedians, tt.in)
		})
	}
}

func TestValueUnmarshalRejectsText(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`"850"`), &v))
}

func TestValueFractionalRoundTrip(t *testing.T) {
	data, err := json.Marshal(Present(560.25))
	require.NoError(t, err)
	assert.Equal(t, "560.25", string(data))

	var v Value
	require.NoError(t, json.Unmarshal(data, &v))
	n, ok := v.Get()
	require.True(t, ok)
	assert.Equal(t, 560.25, n)
}
