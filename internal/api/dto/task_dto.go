package dto

import (
	"time"

	"github.com/spec-kit/complaint-desk/internal/directory"
	"github.com/spec-kit/complaint-desk/internal/domain"
)

// SubmitComplaintRequest payload for POST /complaints.
type SubmitComplaintRequest struct {
	ComplaintType string `json:"complaintType"`
	Priority      string `json:"priority"`
	Description   string `json:"description"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
}

// AssignTaskRequest payload for POST /tasks. TaskID is empty for a new task.
type AssignTaskRequest struct {
	TaskID      string `json:"taskId"`
	WorkerType  string `json:"workerType"`
	WorkerID    string `json:"workerId"`
	Priority    string `json:"priority"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

// StatusEntryResponse is one history step.
type StatusEntryResponse struct {
	Status domain.TaskStatus `json:"status"`
	At     time.Time         `json:"at"`
}

// TaskResponse is the task/complaint view shared by all dashboards.
type TaskResponse struct {
	ID               string                `json:"id"`
	Type             string                `json:"type"`
	Priority         domain.TaskPriority   `json:"priority"`
	Status           domain.TaskStatus     `json:"status"`
	Progress         int                   `json:"progress"`
	NextAction       string                `json:"next_action,omitempty"`
	AssignedWorkerID *string               `json:"assigned_worker_id"`
	Description      string                `json:"description"`
	Address          string                `json:"address"`
	ContactNumber    string                `json:"contact_number,omitempty"`
	Email            string                `json:"email,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	StatusHistory    []StatusEntryResponse `json:"status_history"`
}

// ComplaintReceiptResponse is returned after a complaint is registered.
type ComplaintReceiptResponse struct {
	Complaint      TaskResponse `json:"complaint"`
	ResolutionHint string       `json:"resolution_hint"`
	NextSteps      []string     `json:"next_steps"`
}

// AssignmentResponse is returned after an assignment commits.
type AssignmentResponse struct {
	AssignmentID string         `json:"assignment_id"`
	Task         TaskResponse   `json:"task"`
	Worker       WorkerResponse `json:"worker"`
}

// WorkerResponse is a directory entry.
type WorkerResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	LicenseNumber   string                `json:"license_number"`
	Category        domain.WorkerCategory `json:"category"`
	ExperienceYears int                   `json:"experience_years"`
}

// ComplaintTypeResponse is a catalog entry.
type ComplaintTypeResponse struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
}

// NewTaskResponse maps a task. progress and next are derived from the
// lifecycle by the caller.
func NewTaskResponse(t *domain.Task, progress int, next string) TaskResponse {
	history := make([]StatusEntryResponse, 0, len(t.StatusHistory))
	for _, e := range t.StatusHistory {
		history = append(history, StatusEntryResponse{Status: e.Status, At: e.At})
	}
	return TaskResponse{
		ID:               t.ID,
		Type:             t.Type,
		Priority:         t.Priority,
		Status:           t.Status,
		Progress:         progress,
		NextAction:       next,
		AssignedWorkerID: t.AssignedWorkerID,
		Description:      t.Description,
		Address:          t.Address,
		ContactNumber:    t.ContactNumber,
		Email:            t.Email,
		CreatedAt:        t.CreatedAt,
		StatusHistory:    history,
	}
}

// NewWorkerResponse maps a worker.
func NewWorkerResponse(w domain.Worker) WorkerResponse {
	return WorkerResponse{
		ID:              w.ID,
		Name:            w.Name,
		LicenseNumber:   w.LicenseNumber,
		Category:        w.Category,
		ExperienceYears: w.ExperienceYears,
	}
}

// NewComplaintTypeResponse maps a catalog entry.
func NewComplaintTypeResponse(ct directory.ComplaintType) ComplaintTypeResponse {
	return ComplaintTypeResponse{ID: ct.ID, Label: ct.Label, Placeholder: ct.Placeholder}
}
