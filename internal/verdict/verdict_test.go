package verdict

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/peak"
)

const kst = 9 * 3600

// night for 2024-01-10 KST: sunset 17:30, sunrise 07:40 next morning.
func testNight() astro.NightWindow {
	return astro.NewNightWindow(
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 22, 40, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC),
		kst, "Asia/Seoul")
}

func baseInput() Input {
	return Input{
		Date:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Body:       "Orion",
		Kind:       ephem.KindConstellation,
		Conditions: DefaultConstellationConditions,
		Night:      testNight(),
		Peak: peak.Result{
			Target:       "Orion",
			BestInstant:  time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC), // 23:00 KST
			AltitudeDeg:  55.123,
			AzimuthDeg:   180,
			Direction:    astro.South,
			MoonPhase:    astro.PhaseWaxingCrescent,
			Illumination: 0.02,
			Score:        91.2,
		},
	}
}

func TestRatingForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Rating
	}{
		{100, Excellent}, {80, Excellent}, {79.99, Good}, {60, Good},
		{59.9, Moderate}, {40, Moderate}, {39, Poor}, {20, Poor},
		{19.99, VeryPoor}, {-5, VeryPoor},
	}
	for _, tc := range tests {
		if got := RatingForScore(tc.score); got != tc.want {
			t.Errorf("RatingForScore(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestJudgeVisible(t *testing.T) {
	v := Judge(baseInput())

	if !v.Visible || v.Rating != Excellent {
		t.Fatalf("Visible/Rating = %v/%v, want true/Excellent; reasons %v", v.Visible, v.Rating, v.Reasons)
	}
	if v.BestTime == nil || *v.BestTime != "23:00" {
		t.Errorf("BestTime = %v, want 23:00", v.BestTime)
	}
	if v.Date != "2024-01-10" || v.AzimuthDirection != "South" || v.AltitudeDeg != 55.12 {
		t.Errorf("verdict = %+v", v)
	}
}

func TestJudgeAccumulatesReasons(t *testing.T) {
	in := baseInput()
	in.Body = "Swift-Tuttle"
	in.Kind = ephem.KindComet
	in.Conditions = DefaultTable().For("Swift-Tuttle", ephem.KindComet)
	in.Peak.AltitudeDeg = 18 // at the minimum fails
	in.HasElongation = true
	in.ElongationDeg = 20

	v := Judge(in)
	if v.Visible || v.Rating != VeryPoor || v.BestTime != nil {
		t.Errorf("Visible/Rating/BestTime = %v/%v/%v", v.Visible, v.Rating, v.BestTime)
	}
	if !strings.Contains(v.Reasons[0], "Altitude") || !strings.Contains(v.Reasons[1], "elongation") {
		t.Errorf("expected altitude then elongation reasons, got %v", v.Reasons)
	}
}

func TestJudgeElongationOnly(t *testing.T) {
	in := baseInput()
	in.Conditions = DefaultPlanetConditions
	in.HasElongation = true
	in.ElongationDeg = 12

	v := Judge(in)
	if v.Visible || v.Rating != VeryPoor {
		t.Errorf("Visible/Rating = %v/%v", v.Visible, v.Rating)
	}
	if len(v.Reasons) == 0 || !strings.Contains(v.Reasons[0], "elongation") {
		t.Errorf("reasons = %v", v.Reasons)
	}
}

func TestJudgeDaytimeSuppression(t *testing.T) {
	in := baseInput()
	in.Peak.AltitudeDeg = 70
	in.Peak.BestInstant = time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC) // noon KST

	v := Judge(in)
	if v.Visible {
		t.Error("daytime best instant must not be visible")
	}
	if v.Rating != Excellent {
		t.Errorf("Rating = %v, score still rates the instant", v.Rating)
	}
	last := v.Reasons[len(v.Reasons)-1]
	if !strings.Contains(last, "daytime") {
		t.Errorf("missing daytime reason: %v", v.Reasons)
	}
	if v.BestTime != nil {
		t.Errorf("BestTime = %q, want null", *v.BestTime)
	}

	// Targets that do not need a dark sky are not suppressed.
	in.Conditions.RequiresDark = false
	if v := Judge(in); !v.Visible {
		t.Errorf("RequiresDark=false should stay visible: %v", v.Reasons)
	}
}

func TestJudgePlanetDistance(t *testing.T) {
	tests := []struct {
		distance float64
		want     string
	}{
		{0.62, "Big approach"},
		{0.68, "Close approach"},
		{1.5, "Distance to Earth 1.5000 AU"},
	}
	for _, tc := range tests {
		in := baseInput()
		in.Body = "Mars"
		in.Kind = ephem.KindPlanet
		in.Conditions = DefaultPlanetConditions
		in.DistanceAU = tc.distance

		v := Judge(in)
		found := false
		for _, r := range v.Reasons {
			if strings.Contains(r, tc.want) {
				found = true
			}
		}
		if !found {
			t.Errorf("distance %v: reasons %v missing %q", tc.distance, v.Reasons, tc.want)
		}
	}
}

func TestJudgeIdempotent(t *testing.T) {
	in := baseInput()
	a, b := Judge(in), Judge(in)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeated judgment differs:\n%s", diff)
	}

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Errorf("JSON differs:\n%s\n%s", ja, jb)
	}
}

func TestVerdictJSONShape(t *testing.T) {
	in := baseInput()
	in.Peak.AltitudeDeg = 3
	out, err := json.Marshal(Judge(in))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"date", "visible", "best_time", "altitude_deg", "azimuth_direction", "rating", "reasons"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, out)
		}
	}
	if m["best_time"] != nil {
		t.Errorf("best_time = %v, want null", m["best_time"])
	}
}
