// Package models defines the task records exchanged with the persistence API
// and the transient inputs of the submission workflow.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Stage is a task's workflow position.
type Stage string

const (
	StageTodo       Stage = "todo"
	StageInProgress Stage = "in progress"
	StageCompleted  Stage = "completed"
)

// Stages lists the stages in board order.
var Stages = []Stage{StageTodo, StageInProgress, StageCompleted}

// Priority is a task's priority level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Priorities lists priorities from highest to lowest.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityNormal, PriorityLow}

// normalizeEnum lowercases s and treats '-' and '_' as spaces so that "TODO",
// "In-Progress" and "in_progress" resolve to the wire values.
func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ParseStage resolves user input to a Stage.
func ParseStage(s string) (Stage, error) {
	n := Stage(normalizeEnum(s))
	for _, st := range Stages {
		if st == n {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// ParsePriority resolves user input to a Priority.
func ParsePriority(s string) (Priority, error) {
	n := Priority(normalizeEnum(s))
	for _, p := range Priorities {
		if p == n {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// SubTask is a checklist item owned by exactly one Task.
type SubTask struct {
	ID          string    `json:"_id,omitempty"`
	Title       string    `json:"title"`
	Tag         string    `json:"tag,omitempty"`
	IsCompleted bool      `json:"isCompleted"`
	Date        time.Time `json:"date,omitempty"`
}

// Task is the primary unit of work.
type Task struct {
	// ID is empty until the task is first persisted.
	ID          string     `json:"_id,omitempty"`
	Title       string     `json:"title"`
	Date        time.Time  `json:"date"`
	Team        []UserRef  `json:"team"`
	Stage       Stage      `json:"stage"`
	Priority    Priority   `json:"priority"`
	Description string     `json:"description"`
	Links       []string   `json:"links"`
	Assets      []string   `json:"assets"`
	SubTasks    []SubTask  `json:"subTasks,omitempty"`
	Activities  []Activity `json:"activities,omitempty"`
}

// IsNew reports whether the task has never been persisted.
func (t *Task) IsNew() bool {
	return t.ID == ""
}

// CompletedSubTasks counts sub-tasks whose completion flag is set.
func (t *Task) CompletedSubTasks() int {
	n := 0
	for _, st := range t.SubTasks {
		if st.IsCompleted {
			n++
		}
	}
	return n
}

// PercentComplete returns completed/total*100 rounded to two decimals, or 0
// when the task has no sub-tasks.
func (t *Task) PercentComplete() float64 {
	total := len(t.SubTasks)
	if total == 0 {
		return 0
	}
	p := float64(t.CompletedSubTasks()) / float64(total) * 100
	return math.Round(p*100) / 100
}

// SubTask returns the sub-task with the given id.
func (t *Task) SubTask(id string) (*SubTask, bool) {
	for i := range t.SubTasks {
		if t.SubTasks[i].ID == id {
			return &t.SubTasks[i], true
		}
	}
	return nil, false
}

// SplitLinks splits comma-separated text into trimmed, non-empty links in
// their original order.
func SplitLinks(text string) []string {
	links := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		if l := strings.TrimSpace(part); l != "" {
			links = append(links, l)
		}
	}
	return links
}
