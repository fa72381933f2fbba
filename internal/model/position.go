package model

import "time"

// ValueUnknown marks an optional sample attribute (speed, course, accuracy)
// the position provider did not supply.
const ValueUnknown = -1.0

// Position is a single location sample delivered by a position source.
// Speed is in m/s, Course in degrees clockwise from true north; both are
// negative when the provider did not supply them.
type Position struct {
	Coordinate
	Altitude  float64   `json:"altitude,omitempty"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Speed     float64   `json:"speed,omitempty"`
	Course    float64   `json:"course,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HasSpeed reports whether the provider supplied a speed.
func (p Position) HasSpeed() bool { return p.Speed >= 0 }

// HasCourse reports whether the provider supplied a course.
func (p Position) HasCourse() bool { return p.Course >= 0 }
