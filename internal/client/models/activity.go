package models

import (
	"fmt"
	"time"
)

// ActivityType classifies an activity-log entry.
type ActivityType string

const (
	ActivityStarted    ActivityType = "started"
	ActivityCompleted  ActivityType = "completed"
	ActivityInProgress ActivityType = "in progress"
	ActivityCommented  ActivityType = "commented"
	ActivityBug        ActivityType = "bug"
	ActivityAssigned   ActivityType = "assigned"
)

// ActivityTypes lists the types in the order the activity form offers them.
var ActivityTypes = []ActivityType{
	ActivityStarted,
	ActivityCompleted,
	ActivityInProgress,
	ActivityCommented,
	ActivityBug,
	ActivityAssigned,
}

// ParseActivityType resolves user input to an ActivityType.
func ParseActivityType(s string) (ActivityType, error) {
	n := ActivityType(normalizeEnum(s))
	for _, at := range ActivityTypes {
		if at == n {
			return at, nil
		}
	}
	return "", fmt.Errorf("unknown activity type %q", s)
}

// Activity is an append-only timeline entry owned by one Task.
type Activity struct {
	ID   string       `json:"_id,omitempty"`
	By   *UserRef     `json:"by,omitempty"`
	Type ActivityType `json:"type"`
	Body string       `json:"activity"`
	Date time.Time    `json:"date"`
}
