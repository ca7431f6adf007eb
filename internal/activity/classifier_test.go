package activity

import (
	"testing"

	"github.com/contextd-io/contextd/internal/models"
)

func TestAccept_ThresholdBoundary(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name       string
		confidence int
		want       bool
	}{
		{"well below", 65, false},
		{"exactly at threshold", 70, false},
		{"just above", 71, true},
		{"certain", 100, true},
		{"zero", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := models.ActivitySample{Kind: models.ActivityWalking, Confidence: tt.confidence}
			kind, ok := classifier.Accept(sample)
			if ok != tt.want {
				t.Errorf("Accept(confidence=%d) = %v, want %v", tt.confidence, ok, tt.want)
			}
			if ok && kind != models.ActivityWalking {
				t.Errorf("kind = %s, want walking", kind)
			}
		})
	}
}

func TestAccept_Malformed(t *testing.T) {
	classifier := NewClassifier()

	if _, ok := classifier.Accept(models.ActivitySample{Kind: models.ActivityStill, Confidence: -1}); ok {
		t.Error("negative confidence must be dropped")
	}
	if _, ok := classifier.Accept(models.ActivitySample{Kind: models.ActivityStill, Confidence: 101}); ok {
		t.Error("confidence above 100 must be dropped")
	}
	if _, ok := classifier.Accept(models.ActivitySample{Confidence: 90}); ok {
		t.Error("sample naming no activity must be dropped")
	}
	if _, ok := classifier.Accept(models.ActivitySample{Kind: "levitating", Confidence: 90}); ok {
		t.Error("unrecognized kind must be dropped")
	}
}

func TestAccept_RawProviderCode(t *testing.T) {
	classifier := NewClassifier()

	raw := models.RawRunning
	kind, ok := classifier.Accept(models.ActivitySample{RawType: &raw, Confidence: 85})
	if !ok || kind != models.ActivityRunning {
		t.Errorf("Accept(raw=%d) = (%s, %v), want (running, true)", raw, kind, ok)
	}

	unknownCode := 42
	kind, ok = classifier.Accept(models.ActivitySample{RawType: &unknownCode, Confidence: 85})
	if !ok || kind != models.ActivityUnknown {
		t.Errorf("unrecognized raw code = (%s, %v), want (unknown, true)", kind, ok)
	}
}

func TestAcceptBatch_PreservesOrderAndFilters(t *testing.T) {
	classifier := NewClassifier()

	samples := []models.ActivitySample{
		{Kind: models.ActivityWalking, Confidence: 92},
		{Kind: models.ActivityOnFoot, Confidence: 71},
		{Kind: models.ActivityStill, Confidence: 70},
		{Kind: models.ActivityRunning, Confidence: 40},
	}

	accepted := classifier.AcceptBatch(samples)
	if len(accepted) != 2 {
		t.Fatalf("accepted %d samples, want 2", len(accepted))
	}
	if accepted[0] != models.ActivityWalking || accepted[1] != models.ActivityOnFoot {
		t.Errorf("accepted = %v, want [walking on_foot] in delivery order", accepted)
	}
}

func TestAcceptBatch_Empty(t *testing.T) {
	classifier := NewClassifier()
	if accepted := classifier.AcceptBatch(nil); len(accepted) != 0 {
		t.Errorf("accepted = %v, want empty", accepted)
	}
}
