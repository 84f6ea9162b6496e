// Package model contains domain models passed between layers.
package model

import "time"

// Point is a pixel coordinate in frame space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is one bounding box reported by the estimator.
type Region struct {
	TopLeft     Point `json:"top_left"`
	BottomRight Point `json:"bottom_right"`
}

// Width returns the horizontal extent of the region.
func (r Region) Width() float64 { return r.BottomRight.X - r.TopLeft.X }

// Height returns the vertical extent of the region.
func (r Region) Height() float64 { return r.BottomRight.Y - r.TopLeft.Y }

// Sample is the result of one tick's detection. It is never mutated after creation.
type Sample struct {
	Count      int       // number of regions, never negative
	ObservedAt time.Time // when the detection completed
	Regions    []Region  // raw estimator output, used only for overlays
}

// Frame is an opaque camera frame. The pipeline hands it to the estimator
// and never inspects Data itself.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Width     int
	Height    int
	Data      []byte
}
