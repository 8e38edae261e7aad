package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Details is the type-specific attribute bag of an achievement. Each
// sub-category maps to exactly one variant; readers must switch over the
// concrete types instead of poking optional fields.
type Details interface {
	Kind() string
}

// CompetitionDetails covers placed events: Hackathon, Code Competition,
// Sports, Cultural Event.
type CompetitionDetails struct {
	EventName string    `json:"event_name"`
	Organizer string    `json:"organizer"`
	Location  string    `json:"location"`
	Level     string    `json:"level"`
	Position  Position  `json:"position"`
	Prize     string    `json:"prize,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// EventDetails covers attended events without placement: Workshop,
// Seminar, Webinar, Volunteering.
type EventDetails struct {
	EventName string    `json:"event_name"`
	Organizer string    `json:"organizer"`
	Location  string    `json:"location"`
	Level     string    `json:"level"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type PublicationDetails struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	Indexed     bool      `json:"indexed"`
	Indexing    string    `json:"indexing,omitempty"` // e.g. Scopus, SCI
	PublishedOn time.Time `json:"published_on"`
}

type CourseDetails struct {
	CourseName    string    `json:"course_name"`
	Provider      string    `json:"provider"`
	DurationWeeks int       `json:"duration_weeks"`
	CompletedOn   time.Time `json:"completed_on"`
}

type SpecialDetails struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AwardedOn   time.Time `json:"awarded_on"`
}

func (CompetitionDetails) Kind() string { return "competition" }
func (EventDetails) Kind() string       { return "event" }
func (PublicationDetails) Kind() string { return "publication" }
func (CourseDetails) Kind() string      { return "course" }
func (SpecialDetails) Kind() string     { return "special" }

// Title returns the headline name of the achievement for any variant.
func Title(d Details) string {
	switch v := d.(type) {
	case CompetitionDetails:
		return v.EventName
	case EventDetails:
		return v.EventName
	case PublicationDetails:
		return v.Title
	case CourseDetails:
		return v.CourseName
	case SpecialDetails:
		return v.Title
	}
	return ""
}

// DateRange returns the date span, ok=false for variants without one.
func DateRange(d Details) (start, end time.Time, ok bool) {
	switch v := d.(type) {
	case CompetitionDetails:
		return v.StartDate, v.EndDate, true
	case EventDetails:
		return v.StartDate, v.EndDate, true
	case PublicationDetails:
		return v.PublishedOn, v.PublishedOn, true
	case CourseDetails:
		return v.CompletedOn, v.CompletedOn, true
	case SpecialDetails:
		return v.AwardedOn, v.AwardedOn, true
	}
	return time.Time{}, time.Time{}, false
}

// LocationOf returns the event location, ok=false for variants without one.
func LocationOf(d Details) (string, bool) {
	switch v := d.(type) {
	case CompetitionDetails:
		return v.Location, true
	case EventDetails:
		return v.Location, true
	}
	return "", false
}

// PositionOf returns the placement, ok=false for variants without one.
func PositionOf(d Details) (Position, bool) {
	if v, ok := d.(CompetitionDetails); ok {
		return v.Position, true
	}
	return "", false
}

// LevelOf returns the event level, ok=false for variants without one.
func LevelOf(d Details) (string, bool) {
	switch v := d.(type) {
	case CompetitionDetails:
		return v.Level, true
	case EventDetails:
		return v.Level, true
	}
	return "", false
}

type detailsEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalDetails encodes a variant with its kind tag for jsonb storage.
func MarshalDetails(d Details) ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(detailsEnvelope{Kind: d.Kind(), Data: data})
}

// UnmarshalDetails decodes the kind-tagged envelope back into a variant.
func UnmarshalDetails(b []byte) (Details, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var env detailsEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case "competition":
		var v CompetitionDetails
		return v, json.Unmarshal(env.Data, &v)
	case "event":
		var v EventDetails
		return v, json.Unmarshal(env.Data, &v)
	case "publication":
		var v PublicationDetails
		return v, json.Unmarshal(env.Data, &v)
	case "course":
		var v CourseDetails
		return v, json.Unmarshal(env.Data, &v)
	case "special":
		var v SpecialDetails
		return v, json.Unmarshal(env.Data, &v)
	}
	return nil, fmt.Errorf("unknown details kind %q", env.Kind)
}
