package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformanceReport_DurationInMilliseconds(t *testing.T) {
	in := PerformanceReport{SessionID: "s1", Grade: GradeB, Duration: 90*time.Second + 250*time.Millisecond}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, 90250.0, fields["duration_ms"])
	assert.NotContains(t, fields, "duration")
	assert.Equal(t, "s1", fields["session_id"])

	var out PerformanceReport
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Duration, out.Duration)
	assert.Equal(t, GradeB, out.Grade)
}

func TestAlertSpec_OffsetInSeconds(t *testing.T) {
	var spec AlertSpec
	require.NoError(t, json.Unmarshal([]byte(`{"offset_seconds":-60,"anchor":"deadline","message":"last minute"}`), &spec))
	assert.Equal(t, -time.Minute, spec.Offset)
	assert.Equal(t, AnchorDeadline, spec.Anchor)
	assert.Equal(t, "last minute", spec.Message)

	raw, err := json.Marshal([]AlertSpec{{Offset: 90 * time.Second, Message: "half"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"offset_seconds":90,"message":"half"}]`, string(raw))
}

func TestAlert_OffsetInSeconds(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(Alert{ID: "a1", Offset: 30 * time.Second, FireAt: at, Message: "m"})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, 30.0, fields["offset_seconds"])
	assert.NotContains(t, fields, "offset")
	assert.NotContains(t, fields, "Handle")

	var out Alert
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 30*time.Second, out.Offset)
	assert.True(t, at.Equal(out.FireAt))
}
