// Package tasks defines the payloads that are sent to Kafka.
package tasks

import "time"

// Vote is a thumbs up or down on one guide step.
type Vote string

const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

// StepFeedbackTask is published when a user rates or reports a guide step.
type StepFeedbackTask struct {
	GuideID     string    `json:"guide_id"`
	GuideTitle  string    `json:"guide_title"`
	Context     string    `json:"context"`
	Step        int       `json:"step"`
	StepText    string    `json:"step_text"`
	Vote        Vote      `json:"vote,omitempty"`
	Report      string    `json:"report,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
