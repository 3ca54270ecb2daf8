package domain

import "time"

// TaskStatus enumerates lifecycle states for tasks and complaints.
type TaskStatus string

const (
	TaskStatusSubmitted  TaskStatus = "submitted"
	TaskStatusAssigned   TaskStatus = "assigned"
	TaskStatusStarted    TaskStatus = "started"
	TaskStatusOnLocation TaskStatus = "on_location"
	TaskStatusWorking    TaskStatus = "working"
	TaskStatusCompleted  TaskStatus = "completed"
)

var statusRank = map[TaskStatus]int{
	TaskStatusSubmitted:  0,
	TaskStatusAssigned:   1,
	TaskStatusStarted:    2,
	TaskStatusOnLocation: 3,
	TaskStatusWorking:    4,
	TaskStatusCompleted:  5,
}

// Rank orders statuses along the lifecycle. Unknown statuses rank -1.
func (s TaskStatus) Rank() int {
	rank, ok := statusRank[s]
	if !ok {
		return -1
	}
	return rank
}

// Valid reports whether s is a known lifecycle status.
func (s TaskStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// IsTerminal returns true if no further transitions are possible.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted
}

// TaskPriority enumerates urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// StatusEntry is one step of a task's status history.
type StatusEntry struct {
	Status TaskStatus `json:"status"`
	At     time.Time  `json:"at"`
}

// Task is the aggregate shared by the admin/worker views (task) and the
// consumer view (complaint).
type Task struct {
	ID               string
	Type             string
	Priority         TaskPriority
	Status           TaskStatus
	AssignedWorkerID *string
	Description      string
	Address          string
	ContactNumber    string
	Email            string
	CreatedAt        time.Time
	StatusHistory    []StatusEntry
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.AssignedWorkerID != nil {
		id := *t.AssignedWorkerID
		cp.AssignedWorkerID = &id
	}
	cp.StatusHistory = append([]StatusEntry(nil), t.StatusHistory...)
	return &cp
}
