package model

import (
	"encoding/json"
	"math"
	"time"
)

// Durations cross the wire as offset_seconds or duration_ms rather than
// Go's nanosecond integers.

func (a AlertSpec) MarshalJSON() ([]byte, error) {
	type alias AlertSpec
	return json.Marshal(struct {
		alias
		OffsetSeconds float64 `json:"offset_seconds"`
	}{alias(a), a.Offset.Seconds()})
}

func (a *AlertSpec) UnmarshalJSON(b []byte) error {
	type alias AlertSpec
	aux := struct {
		*alias
		OffsetSeconds float64 `json:"offset_seconds"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	a.Offset = secondsToDuration(aux.OffsetSeconds)
	return nil
}

func (a Alert) MarshalJSON() ([]byte, error) {
	type alias Alert
	return json.Marshal(struct {
		alias
		OffsetSeconds float64 `json:"offset_seconds"`
	}{alias(a), a.Offset.Seconds()})
}

func (a *Alert) UnmarshalJSON(b []byte) error {
	type alias Alert
	aux := struct {
		*alias
		OffsetSeconds float64 `json:"offset_seconds"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	a.Offset = secondsToDuration(aux.OffsetSeconds)
	return nil
}

func (r PerformanceReport) MarshalJSON() ([]byte, error) {
	type alias PerformanceReport
	return json.Marshal(struct {
		alias
		DurationMs int64 `json:"duration_ms"`
	}{alias(r), r.Duration.Milliseconds()})
}

func (r *PerformanceReport) UnmarshalJSON(b []byte) error {
	type alias PerformanceReport
	aux := struct {
		*alias
		DurationMs int64 `json:"duration_ms"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.Duration = time.Duration(aux.DurationMs) * time.Millisecond
	return nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
