package models

import "time"

const DefaultDashboardName = "나의 대시보드"

// SavedDashboard is a named snapshot of the canvas kept in the library.
type SavedDashboard struct {
	Name    string            `firestore:"name" json:"name"`
	Widgets []Widget          `firestore:"widgets" json:"widgets"`
	SavedAt time.Time         `firestore:"savedAt" json:"savedAt"`
	Layouts map[string]Layout `firestore:"layouts,omitempty" json:"layouts,omitempty"`
}

// BuilderState is the working canvas persisted after every change.
type BuilderState struct {
	Name         string            `firestore:"name" json:"name"`
	Widgets      []Widget          `firestore:"widgets" json:"widgets"`
	Layouts      map[string]Layout `firestore:"layouts" json:"layouts"`
	GlobalFilter GlobalFilter      `firestore:"globalFilter" json:"globalFilter"`
	Saved        *SavedDashboard   `firestore:"saved,omitempty" json:"saved,omitempty"`
	UpdatedAt    time.Time         `firestore:"updatedAt" json:"updatedAt"`
}
