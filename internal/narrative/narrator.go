// Package narrative produces the clinical briefing shown when a session
// starts.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/clinsim-backend/internal/model"
)

// Narrator writes a briefing for a scenario.
type Narrator interface {
	Briefing(ctx context.Context, s *model.Scenario) (string, error)
}

// StaticNarrator builds the briefing from the scenario's patient vignette.
type StaticNarrator struct{}

func (StaticNarrator) Briefing(_ context.Context, s *model.Scenario) (string, error) {
	return StaticBriefing(s), nil
}

// StaticBriefing renders the vignette as plain text.
func StaticBriefing(s *model.Scenario) string {
	p := s.Patient
	title := s.Title
	if title == "" {
		title = s.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s. ", title)
	if p.Age > 0 || p.Sex != "" {
		fmt.Fprintf(&b, "A %d-year-old %s ", p.Age, p.Sex)
		if p.PresentingComplaint != "" {
			fmt.Fprintf(&b, "presents with %s. ", lowerFirst(p.PresentingComplaint))
		} else {
			b.WriteString("presents to the department. ")
		}
	}
	if p.History != "" {
		fmt.Fprintf(&b, "Background: %s. ", p.History)
	}
	if v := p.Vitals; v.HeartRate > 0 {
		fmt.Fprintf(&b, "HR %d, BP %s, RR %d, SpO2 %d%%, T %.1f°C. ",
			v.HeartRate, v.BloodPressure, v.RespiratoryRate, v.OxygenSaturation, v.Temperature)
	}
	fmt.Fprintf(&b, "You have %d minutes.", (s.TimeLimitSeconds+59)/60)
	return b.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Resilient calls primary under a timeout and falls back when it fails or
// returns nothing.
type Resilient struct {
	primary  Narrator
	fallback Narrator
	timeout  time.Duration
	log      zerolog.Logger
}

func NewResilient(primary, fallback Narrator, timeout time.Duration, log zerolog.Logger) *Resilient {
	return &Resilient{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		log:      log.With().Str("component", "narrator").Logger(),
	}
}

func (r *Resilient) Briefing(ctx context.Context, s *model.Scenario) (string, error) {
	if r.primary != nil {
		cctx, cancel := context.WithTimeout(ctx, r.timeout)
		text, err := r.primary.Briefing(cctx, s)
		cancel()

		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), nil
		}
		r.log.Warn().Err(err).Str("scenario_id", s.ID).Msg("Briefing generation failed, using static briefing")
	}
	return r.fallback.Briefing(ctx, s)
}
