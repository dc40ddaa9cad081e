package scenario

import (
	"time"

	"github.com/stemsi/clinsim-backend/internal/model"
)

// Library returns fresh copies of the built-in clinical cases.
func Library() []*model.Scenario {
	return []*model.Scenario{
		{
			ID:       "cardiac/acute_mi",
			Category: "cardiac",
			Name:     "acute_mi",
			Title:    "Acute Myocardial Infarction",
			RequiredActions: []string{
				"Order ECG",
				"Administer Aspirin",
				"Establish IV Access",
				"Check Troponin",
			},
			TimeLimitSeconds: 600,
			Difficulty:       model.DifficultyIntermediate,
			LearningObjectives: []string{
				"Recognise ST-elevation on a 12-lead ECG",
				"Initiate antiplatelet therapy without delay",
				"Coordinate early reperfusion",
			},
			Rubric: map[string]model.RubricEntry{
				"activate cath lab":   {Score: 100, Feedback: "Correct. Primary PCI is the reperfusion strategy of choice."},
				"thrombolysis":        {Score: 75, Feedback: "Reasonable when PCI is unavailable within 120 minutes."},
				"observe":             {Score: 25, Feedback: "Observation delays reperfusion in a STEMI."},
				"discharge":           {Score: 0, Feedback: "Unsafe. This patient is having an acute infarction."},
				"repeat ecg":          {Score: 50, Feedback: "Useful for evolving changes but should not delay treatment."},
				"administer nitrates": {Score: 75, Feedback: "Appropriate for ongoing pain if blood pressure allows."},
			},
			Patient: model.Patient{
				Age:                 58,
				Sex:                 "male",
				PresentingComplaint: "Crushing central chest pain radiating to the left arm for 40 minutes",
				History:             "Hypertension, smoker",
				Vitals: model.Vitals{
					HeartRate:        104,
					BloodPressure:    "150/95",
					RespiratoryRate:  22,
					OxygenSaturation: 94,
					Temperature:      36.9,
				},
			},
			AlertPlan: []model.AlertSpec{
				{Offset: 2 * time.Minute, Message: "The patient is becoming diaphoretic. Pending: {pending}."},
				{Offset: 5 * time.Minute, Message: "Half of your time has elapsed in {scenario}. {remaining} remaining."},
				{Offset: 8 * time.Minute, Message: "Door-to-balloon time is slipping. {remaining} left."},
				{Offset: -time.Minute, Anchor: model.AnchorDeadline, Message: "Final warning: {remaining} left to complete {scenario}."},
			},
		},
		{
			ID:       "respiratory/asthma_exacerbation",
			Category: "respiratory",
			Name:     "asthma_exacerbation",
			Title:    "Acute Severe Asthma",
			RequiredActions: []string{
				"Administer Oxygen",
				"Give Nebulised Salbutamol",
				"Give Corticosteroids",
				"Measure Peak Flow",
			},
			TimeLimitSeconds: 480,
			Difficulty:       model.DifficultyBeginner,
			LearningObjectives: []string{
				"Grade the severity of an asthma attack",
				"Deliver first-line bronchodilator therapy",
			},
			Rubric: map[string]model.RubricEntry{
				"add ipratropium":       {Score: 100, Feedback: "Correct escalation for severe asthma."},
				"intravenous magnesium": {Score: 75, Feedback: "Appropriate if there is a poor response to nebulisers."},
				"sedation":              {Score: 0, Feedback: "Sedation is contraindicated in acute asthma."},
				"chest x-ray":           {Score: 50, Feedback: "Only indicated if pneumothorax or consolidation is suspected."},
			},
			Patient: model.Patient{
				Age:                 24,
				Sex:                 "female",
				PresentingComplaint: "Worsening shortness of breath and wheeze since this morning",
				History:             "Known asthmatic, two previous admissions",
				Vitals: model.Vitals{
					HeartRate:        118,
					BloodPressure:    "124/78",
					RespiratoryRate:  28,
					OxygenSaturation: 91,
					Temperature:      37.1,
				},
			},
		},
		{
			ID:       "neurological/acute_stroke",
			Category: "neurological",
			Name:     "acute_stroke",
			Title:    "Acute Ischaemic Stroke",
			RequiredActions: []string{
				"Check Blood Glucose",
				"Order CT Head",
				"Assess NIHSS",
				"Establish Time of Onset",
			},
			TimeLimitSeconds: 720,
			Difficulty:       model.DifficultyAdvanced,
			LearningObjectives: []string{
				"Exclude stroke mimics",
				"Meet the door-to-needle target for thrombolysis",
				"Identify contraindications to thrombolysis",
			},
			Rubric: map[string]model.RubricEntry{
				"thrombolysis":          {Score: 100, Feedback: "Correct within the treatment window once haemorrhage is excluded."},
				"thrombectomy referral": {Score: 100, Feedback: "Correct for a large vessel occlusion."},
				"aspirin":               {Score: 25, Feedback: "Aspirin is deferred until haemorrhage and thrombolysis are considered."},
				"lower blood pressure":  {Score: 50, Feedback: "Only lower pressure if above thrombolysis thresholds."},
			},
			Patient: model.Patient{
				Age:                 71,
				Sex:                 "female",
				PresentingComplaint: "Sudden right-sided weakness and slurred speech",
				History:             "Atrial fibrillation, not anticoagulated",
				Vitals: model.Vitals{
					HeartRate:        92,
					BloodPressure:    "178/96",
					RespiratoryRate:  18,
					OxygenSaturation: 97,
					Temperature:      36.7,
				},
			},
		},
		{
			ID:       "sepsis/urosepsis",
			Category: "sepsis",
			Name:     "urosepsis",
			Title:    "Septic Shock from Urinary Source",
			RequiredActions: []string{
				"Take Blood Cultures",
				"Measure Lactate",
				"Give IV Antibiotics",
				"Start IV Fluids",
				"Monitor Urine Output",
			},
			TimeLimitSeconds: 600,
			Difficulty:       model.DifficultyIntermediate,
			LearningObjectives: []string{
				"Deliver the sepsis six within the first hour",
				"Recognise the need for vasopressor support",
			},
			Rubric: map[string]model.RubricEntry{
				"start vasopressors":  {Score: 100, Feedback: "Correct for hypotension persisting after fluid resuscitation."},
				"refer to icu":        {Score: 100, Feedback: "Appropriate escalation for septic shock."},
				"wait for cultures":   {Score: 0, Feedback: "Antibiotics must not be delayed for culture results."},
				"further fluid bolus": {Score: 75, Feedback: "Reasonable if the patient remains fluid responsive."},
			},
			Patient: model.Patient{
				Age:                 80,
				Sex:                 "male",
				PresentingComplaint: "Confusion and fever for one day",
				History:             "Long-term urinary catheter",
				Vitals: model.Vitals{
					HeartRate:        124,
					BloodPressure:    "82/48",
					RespiratoryRate:  26,
					OxygenSaturation: 93,
					Temperature:      39.2,
				},
			},
		},
		{
			ID:       "trauma/tension_pneumothorax",
			Category: "trauma",
			Name:     "tension_pneumothorax",
			Title:    "Tension Pneumothorax after Road Traffic Collision",
			RequiredActions: []string{
				"Assess Airway",
				"Needle Decompression",
				"Insert Chest Drain",
				"Administer Oxygen",
			},
			TimeLimitSeconds: 300,
			Difficulty:       model.DifficultyAdvanced,
			LearningObjectives: []string{
				"Follow a structured primary survey",
				"Treat tension pneumothorax clinically without waiting for imaging",
			},
			Rubric: map[string]model.RubricEntry{
				"needle decompression": {Score: 100, Feedback: "Correct and immediately life-saving."},
				"chest x-ray first":    {Score: 0, Feedback: "Imaging delays treatment of a clinical diagnosis."},
				"intubate":             {Score: 25, Feedback: "Positive pressure ventilation worsens an undrained tension pneumothorax."},
			},
			Patient: model.Patient{
				Age:                 35,
				Sex:                 "male",
				PresentingComplaint: "Severe breathlessness after high-speed collision",
				Vitals: model.Vitals{
					HeartRate:        136,
					BloodPressure:    "84/50",
					RespiratoryRate:  34,
					OxygenSaturation: 86,
					Temperature:      36.4,
				},
			},
		},
		{
			ID:       "pediatric/febrile_seizure",
			Category: "pediatric",
			Name:     "febrile_seizure",
			Title:    "Prolonged Febrile Seizure",
			RequiredActions: []string{
				"Protect Airway",
				"Check Blood Glucose",
				"Administer Buccal Midazolam",
				"Measure Temperature",
			},
			TimeLimitSeconds: 420,
			Difficulty:       model.DifficultyBeginner,
			LearningObjectives: []string{
				"Manage a convulsing child using the APLS algorithm",
				"Time benzodiazepine doses correctly",
			},
			Rubric: map[string]model.RubricEntry{
				"second benzodiazepine dose": {Score: 100, Feedback: "Correct if seizing continues five minutes after the first dose."},
				"lumbar puncture":            {Score: 25, Feedback: "Not during an active seizure."},
				"reassure and discharge":     {Score: 0, Feedback: "A prolonged seizure needs observation and a source of fever."},
			},
			Patient: model.Patient{
				Age:                 2,
				Sex:                 "male",
				PresentingComplaint: "Generalised seizure for seven minutes with fever",
				Vitals: model.Vitals{
					HeartRate:        160,
					BloodPressure:    "95/60",
					RespiratoryRate:  36,
					OxygenSaturation: 93,
					Temperature:      39.6,
				},
			},
		},
	}
}
