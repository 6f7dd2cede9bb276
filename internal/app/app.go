// Package app wires the capture, detection, classification, and
// tracking stages into the CVJutsu recognition pipeline.
package app

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ayusman/cvjutsu/internal/capture"
	"github.com/ayusman/cvjutsu/internal/classifier"
	"github.com/ayusman/cvjutsu/internal/detector"
	"github.com/ayusman/cvjutsu/internal/effects"
	"github.com/ayusman/cvjutsu/internal/plugin"
	"github.com/ayusman/cvjutsu/internal/seal"
	"github.com/ayusman/cvjutsu/internal/store"
)

// Pipeline timing constants.
const (
	// DefaultIdleFPS is the frame rate when no motion is detected.
	DefaultIdleFPS = 5
	// DefaultActiveFPS is the frame rate during active recognition.
	DefaultActiveFPS = 15
	// IdleTimeout is how long after the last motion the pipeline
	// drops back to the idle frame rate.
	IdleTimeout = 2 * time.Second
	// PluginTimeout bounds a single plugin execution.
	PluginTimeout = 5 * time.Second
	// MatchedAction is the plugin action fired when a jutsu completes.
	MatchedAction = "jutsu_matched"
)

// Config holds configuration options for the application.
type Config struct {
	Store  *store.Store
	Camera capture.Camera

	Tracker      seal.Config
	MotionThresh float64
	IdleFPS      int
	ActiveFPS    int

	PluginDir string
	AssetsDir string
	ModelPath string

	CameraConfig capture.Config
}

// App orchestrates seal recognition and jutsu action execution.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	classifier *classifier.Classifier
	overlay    *effects.Overlay
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	mu        sync.RWMutex
	tracker   *seal.Tracker
	lastState seal.State
	enabled   bool
	stopCh    chan struct{}

	publish   func(seal.State)
	matchHook func(seal.Jutsu)
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	if config.IdleFPS <= 0 {
		config.IdleFPS = DefaultIdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = DefaultActiveFPS
	}
	if config.MotionThresh <= 0 {
		config.MotionThresh = 0.02
	}

	tracker, err := seal.NewTracker(config.Tracker)
	if err != nil {
		return nil, err
	}

	camera := config.Camera
	if camera == nil {
		camera = capture.NewCamera(config.CameraConfig)
	}

	a := &App{
		config:     config,
		camera:     camera,
		motion:     capture.NewMotionDetector(config.MotionThresh),
		classifier: classifier.New(),
		overlay:    effects.NewOverlay(config.AssetsDir),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(PluginTimeout),
		tracker:    tracker,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	if config.ModelPath != "" {
		if _, err := os.Stat(config.ModelPath); err == nil {
			if err := a.classifier.Load(config.ModelPath); err != nil {
				log.Printf("Failed to load classifier model: %v", err)
			} else {
				log.Printf("Loaded classifier model with labels %v", a.classifier.Labels())
			}
		}
	}

	return a, nil
}

// SetEnabled enables or disables seal recognition.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether seal recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetStatePublisher registers a function that receives a tracker
// snapshot for every processed frame.
func (a *App) SetStatePublisher(publish func(seal.State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publish = publish
}

// SetMatchHook registers a function called whenever a jutsu fires.
func (a *App) SetMatchHook(hook func(seal.Jutsu)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.matchHook = hook
}

// State returns the most recent tracker snapshot.
func (a *App) State() seal.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastState
}

// Overlay returns the effect overlay for compositing onto the stream.
func (a *App) Overlay() *effects.Overlay {
	return a.overlay
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// ReloadCatalog rebuilds the tracker from the catalog stored in the
// database, keeping the current tuning. The in-flight sequence is lost.
func (a *App) ReloadCatalog() error {
	if a.config.Store == nil {
		return errors.New("no store configured")
	}

	catalog, err := a.config.Store.Jutsu().Catalog()
	if err != nil {
		return err
	}

	cfg := a.config.Tracker
	cfg.Catalog = catalog
	tracker, err := seal.NewTracker(cfg)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.config.Tracker = cfg
	a.tracker = tracker
	a.mu.Unlock()

	log.Printf("Reloaded catalog with %d jutsu", catalog.Len())
	return nil
}

// TrainFromStore retrains the classifier from all recorded samples and
// persists the model. Returns the trained labels.
func (a *App) TrainFromStore() ([]string, error) {
	if a.config.Store == nil {
		return nil, errors.New("no store configured")
	}

	samples, err := a.config.Store.Samples().All()
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New("no samples recorded")
	}

	a.mu.Lock()
	err = a.classifier.Train(samples)
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if a.config.ModelPath != "" {
		if err := os.MkdirAll(filepath.Dir(a.config.ModelPath), 0755); err != nil {
			return nil, err
		}
		if err := a.classifier.Save(a.config.ModelPath); err != nil {
			return nil, err
		}
	}

	labels := a.classifier.Labels()
	log.Printf("Trained classifier on %d labels", len(labels))
	return labels, nil
}

// ResetTracker clears the in-flight seal sequence and any matched jutsu.
func (a *App) ResetTracker() {
	a.mu.Lock()
	a.tracker.Reset()
	a.lastState = seal.State{}
	a.mu.Unlock()
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start begins the recognition pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Recognition pipeline started")
	return nil
}

// Stop halts the recognition pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()
	a.overlay.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Recognition pipeline stopped")
}

// handleMatch fires the side effects of a completed jutsu: the visual
// overlay, any plugins exposing the matched action, and the match hook.
func (a *App) handleMatch(jutsu seal.Jutsu) {
	log.Printf("Jutsu matched: %s (%v)", jutsu.Name, jutsu.Seals)

	a.overlay.Trigger(jutsu.EffectAsset, jutsu.Display)

	for _, p := range a.pluginMgr.Supporting(MatchedAction) {
		go func(p *plugin.Plugin) {
			req := &plugin.Request{
				Action:  MatchedAction,
				Jutsu:   jutsu.Name,
				Display: jutsu.Display,
				Element: jutsu.Element,
				Seals:   jutsu.Seals,
			}
			if _, err := a.pluginExec.Execute(p, req); err != nil {
				log.Printf("Plugin %s failed: %v", p.Manifest.Name, err)
			}
		}(p)
	}

	a.mu.RLock()
	hook := a.matchHook
	a.mu.RUnlock()
	if hook != nil {
		hook(jutsu)
	}
}

