// Package classifier turns hand landmarks into feature vectors and predicts
// seal labels from them using a trainable nearest-centroid model.
package classifier

import (
	"math"
	"sort"

	"github.com/ayusman/cvjutsu/internal/detector"
)

// FeatureDim is the length of every feature vector:
// 126 flattened coordinates (21 landmarks x 3 axes x 2 hands)
// + 10 fingertip-to-wrist distances (5 per hand)
// + 5 fingertip-to-fingertip distances across hands
// + 1 palm distance
// + 5 left-fingertip-to-right-wrist distances.
const FeatureDim = 147

// fingertips lists the landmark indices of the five fingertips.
var fingertips = [5]int{
	detector.ThumbTip,
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

// Extract builds a feature vector from the detected hands.
// Landmarks are normalized per hand to a wrist origin and palm scale, so the
// features are invariant to hand position and size. One-hand input is padded
// with a zero hand. Returns nil if no hands were detected.
func Extract(hands []detector.HandLandmarks) []float64 {
	if len(hands) == 0 {
		return nil
	}

	// Left hand first, for consistent feature ordering.
	ordered := make([]detector.HandLandmarks, len(hands))
	copy(ordered, hands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Handedness == "Left" && ordered[j].Handedness != "Left"
	})
	if len(ordered) > 2 {
		ordered = ordered[:2]
	}

	var left, right detector.HandLandmarks
	if n := ordered[0].Normalize(); n != nil {
		left = *n
	}
	if len(ordered) > 1 {
		if n := ordered[1].Normalize(); n != nil {
			right = *n
		}
	}

	features := make([]float64, 0, FeatureDim)

	// Flattened coordinates for both hands.
	for _, hand := range [2]*detector.HandLandmarks{&left, &right} {
		for i := 0; i < detector.NumLandmarks; i++ {
			p := hand.Points[i]
			features = append(features, p.X, p.Y, p.Z)
		}
	}

	// Fingertip-to-wrist distances per hand. The wrist sits at the origin
	// after normalization.
	for _, hand := range [2]*detector.HandLandmarks{&left, &right} {
		for _, ft := range fingertips {
			features = append(features, vectorNorm(hand.Points[ft]))
		}
	}

	// Fingertip-to-fingertip distances across hands.
	for _, ft := range fingertips {
		features = append(features, pointDistance(left.Points[ft], right.Points[ft]))
	}

	// Palm distance between the two index knuckles.
	features = append(features, pointDistance(left.Points[detector.IndexMCP], right.Points[detector.IndexMCP]))

	// Left fingertips to the right wrist (origin).
	for _, ft := range fingertips {
		features = append(features, vectorNorm(left.Points[ft]))
	}

	return features
}

func vectorNorm(p detector.Point3D) float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

func pointDistance(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
