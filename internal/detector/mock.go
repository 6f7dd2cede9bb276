package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ToraSealLandmarks returns a preset hand approximating the tiger seal:
// index and middle fingers extended upward, the rest curled.
func ToraSealLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.82, Z: 0.0}

	// Thumb folded across the palm
	landmarks.Points[ThumbCMC] = Point3D{X: 0.54, Y: 0.78, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.56, Y: 0.74, Z: -0.02}
	landmarks.Points[ThumbIP] = Point3D{X: 0.53, Y: 0.72, Z: -0.04}
	landmarks.Points[ThumbTip] = Point3D{X: 0.49, Y: 0.71, Z: -0.04}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point3D{X: 0.54, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.56, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.56, Y: 0.46, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.56, Y: 0.37, Z: 0.0}

	// Middle finger extended upward
	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.53, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.42, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.32, Z: 0.0}

	// Ring finger curled
	landmarks.Points[RingMCP] = Point3D{X: 0.46, Y: 0.68, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.46, Y: 0.65, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.44, Y: 0.68, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.71, Z: -0.02}

	// Pinky curled
	landmarks.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.71, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.42, Y: 0.68, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: 0.38, Y: 0.73, Z: -0.02}

	return landmarks
}

// MiSealLandmarks returns a preset hand approximating the snake seal:
// a flat hand with all fingers extended and pressed together.
func MiSealLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.82, Z: 0.0}

	// Thumb alongside the palm
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.77, Z: 0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.59, Y: 0.72, Z: 0.02}
	landmarks.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.66, Z: 0.02}
	landmarks.Points[ThumbTip] = Point3D{X: 0.62, Y: 0.61, Z: 0.02}

	// Fingers extended upward, close together
	landmarks.Points[IndexMCP] = Point3D{X: 0.53, Y: 0.67, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.54, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.54, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.54, Y: 0.36, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.41, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.30, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.47, Y: 0.67, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.46, Y: 0.54, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.46, Y: 0.44, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.46, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.44, Y: 0.69, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.42, Y: 0.59, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.41, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.41, Y: 0.43, Z: 0.0}

	return landmarks
}
