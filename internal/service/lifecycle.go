package service

import "github.com/spec-kit/complaint-desk/internal/domain"

// Trigger names an explicit lifecycle step.
type Trigger string

const (
	TriggerAssign    Trigger = "assign"
	TriggerStart     Trigger = "start"
	TriggerArrive    Trigger = "arrive"
	TriggerBeginWork Trigger = "begin_work"
	TriggerComplete  Trigger = "complete"
)

type transitionRule struct {
	from domain.TaskStatus
	to   domain.TaskStatus
}

// Every trigger moves exactly one step forward.
var transitions = map[Trigger]transitionRule{
	TriggerAssign:    {from: domain.TaskStatusSubmitted, to: domain.TaskStatusAssigned},
	TriggerStart:     {from: domain.TaskStatusAssigned, to: domain.TaskStatusStarted},
	TriggerArrive:    {from: domain.TaskStatusStarted, to: domain.TaskStatusOnLocation},
	TriggerBeginWork: {from: domain.TaskStatusOnLocation, to: domain.TaskStatusWorking},
	TriggerComplete:  {from: domain.TaskStatusWorking, to: domain.TaskStatusCompleted},
}

var completion = map[domain.TaskStatus]int{
	domain.TaskStatusSubmitted:  0,
	domain.TaskStatusAssigned:   0,
	domain.TaskStatusStarted:    20,
	domain.TaskStatusOnLocation: 40,
	domain.TaskStatusWorking:    70,
	domain.TaskStatusCompleted:  100,
}

// CompletionPercent is the progress shown on the dashboards for status.
func CompletionPercent(status domain.TaskStatus) int {
	return completion[status]
}

// NextTrigger returns the trigger that advances status, if any.
func NextTrigger(status domain.TaskStatus) (Trigger, bool) {
	for trigger, rule := range transitions {
		if rule.from == status {
			return trigger, true
		}
	}
	return "", false
}

var successMessages = map[Trigger]string{
	TriggerStart:     "Task started successfully! Please proceed to the service location and update your progress.",
	TriggerArrive:    "Arrival at the service location recorded.",
	TriggerBeginWork: "Work has begun. Keep the consumer informed of any delays.",
	TriggerComplete:  "Task completed successfully! The consumer will be notified.",
}
