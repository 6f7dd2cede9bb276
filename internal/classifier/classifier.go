package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// ErrModelNotLoaded is returned when predicting before training or loading.
var ErrModelNotLoaded = errors.New("classifier model not loaded")

// Classifier is a nearest-centroid seal classifier. Training averages the
// feature vectors of each label into a centroid; prediction returns the
// label of the closest centroid with a confidence share across all labels.
type Classifier struct {
	labels    []string
	centroids map[string][]float64
}

// New creates an empty, untrained Classifier.
func New() *Classifier {
	return &Classifier{
		centroids: make(map[string][]float64),
	}
}

// IsLoaded reports whether the classifier has a trained model.
func (c *Classifier) IsLoaded() bool {
	return len(c.labels) > 0
}

// Labels returns the trained labels in sorted order.
func (c *Classifier) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Train builds one centroid per label by averaging that label's samples.
// Every sample must have FeatureDim values.
func (c *Classifier) Train(samples map[string][][]float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("no training samples provided")
	}

	labels := make([]string, 0, len(samples))
	centroids := make(map[string][]float64, len(samples))

	for label, vectors := range samples {
		if len(vectors) == 0 {
			return fmt.Errorf("label %q has no samples", label)
		}

		centroid := make([]float64, FeatureDim)
		for i, vec := range vectors {
			if len(vec) != FeatureDim {
				return fmt.Errorf("label %q sample %d has %d features, expected %d",
					label, i, len(vec), FeatureDim)
			}
			for j, v := range vec {
				centroid[j] += v
			}
		}

		n := float64(len(vectors))
		for j := range centroid {
			centroid[j] /= n
		}

		labels = append(labels, label)
		centroids[label] = centroid
	}

	sort.Strings(labels)
	c.labels = labels
	c.centroids = centroids
	return nil
}

// Predict returns the best matching label for the feature vector along with
// a confidence in [0,1]. Confidence is the winning centroid's closeness
// share across all centroids, so well-separated inputs score near 1 and
// ambiguous inputs near 1/len(labels).
func (c *Classifier) Predict(features []float64) (string, float64, error) {
	if !c.IsLoaded() {
		return "", 0, ErrModelNotLoaded
	}
	if len(features) != FeatureDim {
		return "", 0, fmt.Errorf("feature vector has %d values, expected %d", len(features), FeatureDim)
	}

	best := ""
	bestCloseness := 0.0
	total := 0.0

	for _, label := range c.labels {
		dist := euclidean(features, c.centroids[label])
		closeness := 1.0 / (1.0 + dist)
		total += closeness
		if closeness > bestCloseness {
			bestCloseness = closeness
			best = label
		}
	}

	return best, bestCloseness / total, nil
}

// modelFile is the on-disk JSON representation of a trained model.
type modelFile struct {
	Labels    []string             `json:"labels"`
	Centroids map[string][]float64 `json:"centroids"`
}

// Save writes the trained model to the given path, creating parent
// directories as needed.
func (c *Classifier) Save(path string) error {
	if !c.IsLoaded() {
		return ErrModelNotLoaded
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	data, err := json.Marshal(modelFile{Labels: c.labels, Centroids: c.centroids})
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	return nil
}

// Load reads a trained model from the given path.
func (c *Classifier) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}

	var m modelFile
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse model: %w", err)
	}

	for _, label := range m.Labels {
		centroid, ok := m.Centroids[label]
		if !ok {
			return fmt.Errorf("model is missing centroid for label %q", label)
		}
		if len(centroid) != FeatureDim {
			return fmt.Errorf("centroid for %q has %d values, expected %d", label, len(centroid), FeatureDim)
		}
	}

	c.labels = m.Labels
	c.centroids = m.Centroids
	return nil
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
