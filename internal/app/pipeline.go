package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/cvjutsu/internal/classifier"
	"github.com/ayusman/cvjutsu/internal/detector"
	"github.com/ayusman/cvjutsu/internal/seal"
)

// runPipeline is the main recognition loop. It manages the transition
// between idle and active frame rates based on motion, and feeds frames
// through detection, classification, and the seal tracker.
//
// Pipeline logic:
// 1. Start in idle mode at the idle frame rate
// 2. On motion, switch to the active frame rate
// 3. Detect hand landmarks and extract the feature vector
// 4. Classify the seal and feed the prediction into the tracker
// 5. On a completed jutsu, fire the overlay, plugins, and match hook
// 6. After 2s without motion, drop back to idle mode
func (a *App) runPipeline(stopCh chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(a.config.IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					a.camera.SetFPS(a.config.ActiveFPS)
					frameInterval = time.Second / time.Duration(a.config.ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode && time.Since(lastMotionTime) > IdleTimeout {
				activeMode = false
				a.camera.SetFPS(a.config.IdleFPS)
				frameInterval = time.Second / time.Duration(a.config.IdleFPS)
				ticker.Reset(frameInterval)
				log.Println("Switched to idle mode")
			}

			if !activeMode {
				frame.Close()
				continue
			}

			a.processFrame(frame)
			frame.Close()
		}
	}
}

// processFrame runs one frame through detection, classification, and
// the tracker, then publishes the resulting snapshot.
func (a *App) processFrame(frame *gocv.Mat) {
	a.mu.RLock()
	det := a.detector
	a.mu.RUnlock()

	if det == nil {
		return
	}

	hands, err := det.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return
	}

	label, confidence := a.classify(hands)
	a.Advance(label, confidence)
}

// classify turns detected hands into a seal prediction. No hands or an
// untrained classifier yield the None prediction.
func (a *App) classify(hands []detector.HandLandmarks) (string, float64) {
	features := classifier.Extract(hands)
	if features == nil {
		return seal.None, 0
	}

	a.mu.RLock()
	label, confidence, err := a.classifier.Predict(features)
	a.mu.RUnlock()
	if err != nil {
		return seal.None, 0
	}
	return label, confidence
}

// Advance feeds one seal prediction into the tracker, publishes the
// resulting snapshot, and fires match side effects.
func (a *App) Advance(label string, confidence float64) {
	a.mu.Lock()
	state := a.tracker.Update(label, confidence)
	a.lastState = state
	publish := a.publish
	a.mu.Unlock()

	if state.SealJustConfirmed {
		log.Printf("Seal confirmed: %s (%.2f)", state.CurrentSeal, state.CurrentConfidence)
	}

	if publish != nil {
		publish(state)
	}

	if state.JutsuJustMatched && state.MatchedJutsu != nil {
		a.handleMatch(*state.MatchedJutsu)
	}
}
