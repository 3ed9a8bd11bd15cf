// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package greeting records every greeting the service hands out and renders its
time-of-day salutation.

Each call to the hello endpoint stores one [Greeting]. Anonymous callers are
attributed to the shared guest account; signed-in callers to themselves.
*/
package greeting

import (
	"fmt"
	"time"
)

// # Request Types

// RequestType identifies the surface a greeting was requested through.
type RequestType string

const (
	// RequestTypeAPI is the JSON endpoint.
	RequestTypeAPI RequestType = "API"

	// RequestTypeWeb is the HTML surface.
	RequestTypeWeb RequestType = "WEB"
)

// # Time Of Day

// TimeOfDay buckets an hour of the day.
type TimeOfDay string

const (
	Morning   TimeOfDay = "MORNING"
	Afternoon TimeOfDay = "AFTERNOON"
	Night     TimeOfDay = "NIGHT"
)

// TimeOfDayAt classifies at by its wall-clock hour in at's location.
// 06:00-11:59 is morning, 12:00-17:59 afternoon, anything else night.
func TimeOfDayAt(at time.Time) TimeOfDay {
	switch hour := at.Hour(); {
	case hour >= 6 && hour <= 11:
		return Morning
	case hour >= 12 && hour <= 17:
		return Afternoon
	default:
		return Night
	}
}

// Salutation is the phrase opening a greeting message.
func (t TimeOfDay) Salutation() string {
	switch t {
	case Morning:
		return "Good Morning"
	case Afternoon:
		return "Good Afternoon"
	default:
		return "Good Night"
	}
}

// # Entity

// Greeting is one recorded greeting.
type Greeting struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	RequestType RequestType `json:"requestType"`
	UserID      int64       `json:"-"`
	CreatedAt   time.Time   `json:"timestamp"`
}

// TimeOfDay returns the bucket of the creation time.
func (greeting *Greeting) TimeOfDay() TimeOfDay {
	return TimeOfDayAt(greeting.CreatedAt)
}

// Message renders e.g. "Good Morning, World!".
func (greeting *Greeting) Message() string {
	return fmt.Sprintf("%s, %s!", greeting.TimeOfDay().Salutation(), greeting.Name)
}

// # Field Names

const (
	FieldName = "name"
)
