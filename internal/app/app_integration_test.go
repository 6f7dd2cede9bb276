package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/cvjutsu/internal/classifier"
	"github.com/ayusman/cvjutsu/internal/detector"
	"github.com/ayusman/cvjutsu/internal/seal"
	"github.com/ayusman/cvjutsu/internal/store"
	"gocv.io/x/gocv"
)

func newTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	if _, err := s.Jutsu().Seed(seal.DefaultCatalog()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	app, err := New(Config{
		Store:     s,
		Tracker:   seal.DefaultConfig(),
		PluginDir: filepath.Join(tmpDir, "plugins"),
		AssetsDir: filepath.Join(tmpDir, "assets"),
		ModelPath: filepath.Join(tmpDir, "model.json"),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return app, s
}

// feed pushes the same prediction through the tracker repeatedly.
func feed(app *App, label string, confidence float64, frames int) {
	for i := 0; i < frames; i++ {
		app.Advance(label, confidence)
	}
}

func TestApp_FireballRecognitionFlow(t *testing.T) {
	app, _ := newTestApp(t)

	var matched []string
	app.SetMatchHook(func(j seal.Jutsu) {
		matched = append(matched, j.Name)
	})

	var published []seal.State
	app.SetStatePublisher(func(s seal.State) {
		published = append(published, s)
	})

	// Snake, ram, tiger: the fireball sequence, with gaps between seals.
	feed(app, seal.SealMi, 0.9, 5)
	feed(app, seal.None, 0, 4)
	feed(app, seal.SealHitsuji, 0.9, 5)
	feed(app, seal.None, 0, 4)
	feed(app, seal.SealTora, 0.9, 5)

	if len(matched) != 1 || matched[0] != "katon_goukakyu" {
		t.Fatalf("matched = %v, want [katon_goukakyu]", matched)
	}

	state := app.State()
	if state.MatchedJutsu == nil || state.MatchedJutsu.Name != "katon_goukakyu" {
		t.Errorf("MatchedJutsu = %v, want katon_goukakyu", state.MatchedJutsu)
	}

	if len(published) != 23 {
		t.Errorf("got %d published states, want one per frame (23)", len(published))
	}

	// The match triggers the visual effect.
	if !app.Overlay().Active() {
		t.Error("overlay should be active after a match")
	}
}

func TestApp_LowConfidenceNeverMatches(t *testing.T) {
	app, _ := newTestApp(t)

	var matched []string
	app.SetMatchHook(func(j seal.Jutsu) {
		matched = append(matched, j.Name)
	})

	feed(app, seal.SealMi, 0.3, 20)

	if len(matched) != 0 {
		t.Errorf("matched = %v, want none at low confidence", matched)
	}
	if len(app.State().ConfirmedSequence) != 0 {
		t.Errorf("ConfirmedSequence = %v, want empty", app.State().ConfirmedSequence)
	}
}

func TestApp_ResetTracker(t *testing.T) {
	app, _ := newTestApp(t)

	feed(app, seal.SealMi, 0.9, 5)
	if len(app.State().ConfirmedSequence) != 1 {
		t.Fatalf("ConfirmedSequence = %v, want [mi]", app.State().ConfirmedSequence)
	}

	app.ResetTracker()
	if len(app.State().ConfirmedSequence) != 0 {
		t.Errorf("ConfirmedSequence after reset = %v, want empty", app.State().ConfirmedSequence)
	}
}

func TestApp_TrainFromStore(t *testing.T) {
	app, s := newTestApp(t)

	vec := func(fill float64) []float64 {
		v := make([]float64, classifier.FeatureDim)
		for i := range v {
			v[i] = fill
		}
		return v
	}

	if err := s.Samples().CreateBatch("tora", []string{"t1", "t2"}, [][]float64{vec(0.1), vec(0.2)}); err != nil {
		t.Fatalf("failed to store samples: %v", err)
	}
	if err := s.Samples().CreateBatch("mi", []string{"m1"}, [][]float64{vec(0.9)}); err != nil {
		t.Fatalf("failed to store samples: %v", err)
	}

	labels, err := app.TrainFromStore()
	if err != nil {
		t.Fatalf("TrainFromStore() error = %v", err)
	}
	if len(labels) != 2 {
		t.Errorf("got labels %v, want 2 labels", labels)
	}

	// Model is persisted for the next start.
	if _, err := os.Stat(app.config.ModelPath); err != nil {
		t.Errorf("model file should exist after training: %v", err)
	}

	// The trained classifier drives predictions.
	label, confidence, err := app.classifier.Predict(vec(0.88))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if label != "mi" {
		t.Errorf("predicted %q (%.2f), want mi", label, confidence)
	}
}

func TestApp_TrainFromStore_NoSamples(t *testing.T) {
	app, _ := newTestApp(t)

	if _, err := app.TrainFromStore(); err == nil {
		t.Error("training with no samples should fail")
	}
}

func TestApp_ReloadCatalog(t *testing.T) {
	app, s := newTestApp(t)

	if err := s.Jutsu().Create(seal.Jutsu{
		Name:  "rasengan",
		Seals: []string{seal.SealUshi, seal.SealMi},
	}); err != nil {
		t.Fatalf("failed to create jutsu: %v", err)
	}

	if err := app.ReloadCatalog(); err != nil {
		t.Fatalf("ReloadCatalog() error = %v", err)
	}

	var matched []string
	app.SetMatchHook(func(j seal.Jutsu) {
		matched = append(matched, j.Name)
	})

	feed(app, seal.SealUshi, 0.9, 5)
	feed(app, seal.None, 0, 4)
	feed(app, seal.SealMi, 0.9, 5)

	if len(matched) != 1 || matched[0] != "rasengan" {
		t.Errorf("matched = %v, want [rasengan]", matched)
	}
}

func TestApp_MatchRunsPlugins(t *testing.T) {
	app, _ := newTestApp(t)

	// A plugin that records the jutsu it was called with.
	pluginDir := filepath.Join(app.config.PluginDir, "recorder")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	outFile := filepath.Join(pluginDir, "out.json")

	manifest := `{"name": "recorder", "version": "1.0.0", "executable": "run.sh", "actions": ["jutsu_matched"]}`
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	script := "#!/bin/sh\ncat > " + outFile + "\necho '{\"success\":true}'\n"
	if err := os.WriteFile(filepath.Join(pluginDir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	if err := app.DiscoverPlugins(); err != nil {
		t.Fatalf("DiscoverPlugins() error = %v", err)
	}

	// Single-seal clone jutsu: confirm, then idle past the delay.
	feed(app, seal.SealHitsuji, 0.9, 5)
	time.Sleep(seal.DefaultSingleSealDelay + 100*time.Millisecond)
	feed(app, seal.None, 0, 1)

	// The plugin runs asynchronously.
	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, err := os.Stat(outFile); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("plugin output never appeared")
		}
		time.Sleep(20 * time.Millisecond)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("failed to read plugin output: %v", err)
	}
	if !strings.Contains(string(data), "kage_bunshin") {
		t.Errorf("plugin request %s should name kage_bunshin", data)
	}
}

func TestApp_ProcessFrame_NoHands(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	app, _ := newTestApp(t)

	mock := detector.NewMockDetector()
	app.SetDetector(mock)

	var published []seal.State
	app.SetStatePublisher(func(s seal.State) {
		published = append(published, s)
	})

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	app.processFrame(&frame)

	if len(published) != 1 {
		t.Fatalf("got %d published states, want 1", len(published))
	}
	if published[0].CurrentSeal != seal.None {
		t.Errorf("CurrentSeal = %q, want none", published[0].CurrentSeal)
	}
}
