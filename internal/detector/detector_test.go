package detector

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxHands != 2 {
		t.Errorf("MaxHands = %d, want 2", cfg.MaxHands)
	}
	if cfg.MinConfidence <= 0 || cfg.MinConfidence > 1 {
		t.Errorf("MinConfidence = %f, want in (0,1]", cfg.MinConfidence)
	}
	if cfg.MinTrackingConf <= 0 || cfg.MinTrackingConf > 1 {
		t.Errorf("MinTrackingConf = %f, want in (0,1]", cfg.MinTrackingConf)
	}
}

func TestHandLandmarks_Normalize(t *testing.T) {
	hand := ToraSealLandmarks()
	normalized := hand.Normalize()

	if normalized == nil {
		t.Fatal("Normalize() returned nil")
	}

	// Wrist moves to the origin.
	wrist := normalized.Points[Wrist]
	if wrist.X != 0 || wrist.Y != 0 || wrist.Z != 0 {
		t.Errorf("normalized wrist = %+v, want origin", wrist)
	}

	// Palm size, the wrist to index MCP distance, becomes the unit scale.
	mcp := normalized.Points[IndexMCP]
	dist := math.Sqrt(mcp.X*mcp.X + mcp.Y*mcp.Y + mcp.Z*mcp.Z)
	if math.Abs(dist-1.0) > 1e-9 {
		t.Errorf("wrist to index MCP distance = %f, want 1.0", dist)
	}

	// Handedness and score carry over.
	if normalized.Handedness != hand.Handedness {
		t.Errorf("Handedness = %q, want %q", normalized.Handedness, hand.Handedness)
	}
	if normalized.Score != hand.Score {
		t.Errorf("Score = %f, want %f", normalized.Score, hand.Score)
	}
}

func TestHandLandmarks_NormalizeNil(t *testing.T) {
	var hand *HandLandmarks
	if got := hand.Normalize(); got != nil {
		t.Errorf("Normalize() on nil = %v, want nil", got)
	}
}

func TestSealPresets_Differ(t *testing.T) {
	tora := ToraSealLandmarks().Normalize()
	mi := MiSealLandmarks().Normalize()

	var total float64
	for i := 0; i < NumLandmarks; i++ {
		dx := tora.Points[i].X - mi.Points[i].X
		dy := tora.Points[i].Y - mi.Points[i].Y
		dz := tora.Points[i].Z - mi.Points[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}

	if total < 0.5 {
		t.Errorf("preset poses are too similar, total distance = %f", total)
	}
}

func TestMockDetector(t *testing.T) {
	m := NewMockDetector()

	t.Run("empty by default", func(t *testing.T) {
		hands, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("got %d hands, want 0", len(hands))
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		m.SetHands([]HandLandmarks{ToraSealLandmarks()})
		hands, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("got %d hands, want 1", len(hands))
		}
		if hands[0].Handedness != "Right" {
			t.Errorf("Handedness = %q, want Right", hands[0].Handedness)
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		wantErr := errors.New("camera unplugged")
		m.SetError(wantErr)
		if _, err := m.Detect(nil); !errors.Is(err, wantErr) {
			t.Errorf("Detect() error = %v, want %v", err, wantErr)
		}
	})

	t.Run("close is a no-op", func(t *testing.T) {
		if err := m.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}
