package models

import "time"

type MessageStatus string

const (
	MessageLoading MessageStatus = "loading"
	MessageSuccess MessageStatus = "success"
	MessageError   MessageStatus = "error"
)

// ChatMessage is one assistant exchange: the question and its outcome.
type ChatMessage struct {
	ID              string        `firestore:"id" json:"id"`
	Question        string        `firestore:"question" json:"question"`
	Status          MessageStatus `firestore:"status" json:"status"`
	RemoteMessageID string        `firestore:"remoteMessageId,omitempty" json:"remoteMessageId,omitempty"`
	SQL             string        `firestore:"sql,omitempty" json:"sql,omitempty"`
	Data            []Row         `firestore:"data,omitempty" json:"data,omitempty"`
	ChartType       string        `firestore:"chartType,omitempty" json:"chartType,omitempty"`
	Summary         string        `firestore:"summary,omitempty" json:"summary,omitempty"`
	FromCache       bool          `firestore:"fromCache,omitempty" json:"fromCache,omitempty"`
	Error           string        `firestore:"error,omitempty" json:"error,omitempty"`
	Unreachable     bool          `firestore:"unreachable,omitempty" json:"unreachable,omitempty"`
	ElapsedMs       int64         `firestore:"elapsedMs" json:"elapsedMs"`
	Rating          string        `firestore:"rating,omitempty" json:"rating,omitempty"`
	CreatedAt       time.Time     `firestore:"createdAt" json:"createdAt"`
	ExpiresAt       time.Time     `firestore:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}
