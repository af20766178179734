//go:build !integration

package experiment

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"makerLink/domain"
)

// scenario params
const (
	stressWorkers          = 16
	stressOutcomesPerWorker = 500
)

// Concurrent RecordParticipant calls must not lose increments; the counter
// totals have to reconcile exactly with what the workers wrote.
func TestRecordParticipantConcurrent(t *testing.T) {
	engine := NewEngine(NewMemoryExperimentStore(), nil)
	ctx := context.Background()

	exp, err := engine.Create(ctx, CreateParams{
		Name:          "counter stress",
		Type:          domain.ExperimentScoringWeights,
		ControlConfig: domain.VariantConfig{},
		TreatmentConfigs: map[string]domain.VariantConfig{
			"treatment_a": {domain.AttrMaterial: 0.5},
		},
		TrafficAllocation: map[string]float64{
			domain.ControlVariant: 0.5,
			"treatment_a":         0.5,
		},
		PrimaryMetric:     domain.MetricConversionRate,
		MinimumSampleSize: 100,
		MinimumEffectSize: 0.02,
		ConfidenceLevel:   0.95,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.Start(ctx, exp.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < stressWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < stressOutcomesPerWorker; i++ {
				variant := domain.ControlVariant
				if i%2 == 1 {
					variant = "treatment_a"
				}
				out := Outcome{
					Converted:   i%5 == 0,
					MetricValue: float64(i%10) * 0.1,
				}
				session := fmt.Sprintf("w%d-s%d", worker, i)
				if err := engine.RecordParticipant(ctx, exp.ID, session, variant, out); err != nil {
					t.Errorf("record: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	results, err := engine.Analyze(ctx, exp.ID)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if results == nil {
		t.Fatal("analyze returned nil results")
	}

	perVariant := int64(stressWorkers * stressOutcomesPerWorker / 2)
	if results.Control.Participants != perVariant {
		t.Errorf("control participants = %d, want %d", results.Control.Participants, perVariant)
	}
	if len(results.Treatments) != 1 {
		t.Fatalf("treatments = %d, want 1", len(results.Treatments))
	}
	if results.Treatments[0].Participants != perVariant {
		t.Errorf("treatment participants = %d, want %d", results.Treatments[0].Participants, perVariant)
	}

	// even i converts 1 in 5, odd i converts 1 in 5 shifted
	totalConversions := results.Control.Conversions + results.Treatments[0].Conversions
	wantConversions := int64(stressWorkers) * int64(stressOutcomesPerWorker/5)
	if totalConversions != wantConversions {
		t.Errorf("conversions = %d, want %d", totalConversions, wantConversions)
	}

	t.Logf("[STRESS] participants=%d conversions=%d",
		results.Control.Participants+results.Treatments[0].Participants, totalConversions)
}
