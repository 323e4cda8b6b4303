package arcade

import (
	"time"
)

// Job states reported by the queue service.
const (
	JobStateWaiting   = "waiting"
	JobStateRunning   = "running"
	JobStateFinished  = "finished"
	JobStateFailed    = "failed"
	JobStateCancelled = "cancelled"
)

// Work item states reported by the queue service.
const (
	WorkItemStateQueued   = "queued"
	WorkItemStateRunning  = "running"
	WorkItemStateFinished = "finished"
	WorkItemStateFailed   = "failed"
)

// Job represents one submitted job and its correlation metadata.
type Job struct {
	ID         string            `json:"id"                   yaml:"id"`
	Name       string            `json:"name"                 yaml:"name"`
	QueueID    string            `json:"queue_id"             yaml:"queue_id"`
	Source     string            `json:"source,omitempty"     yaml:"source,omitempty"`
	State      string            `json:"state"                yaml:"state"`
	Created    time.Time         `json:"created"              yaml:"created"`
	Started    *time.Time        `json:"started,omitempty"    yaml:"started,omitempty"`
	Finished   *time.Time        `json:"finished,omitempty"   yaml:"finished,omitempty"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// JobRequest is the payload for submitting a new job.
type JobRequest struct {
	Name       string            `json:"name"                 yaml:"name"`
	QueueID    string            `json:"queue_id"             yaml:"queue_id"`
	Source     string            `json:"source,omitempty"     yaml:"source,omitempty"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
	WorkItems  []WorkItemRequest `json:"work_items,omitempty" yaml:"work_items,omitempty"`
}

// WorkItem represents one unit of work executed on a queue machine.
type WorkItem struct {
	Name        string     `json:"name"                  yaml:"name"`
	JobID       string     `json:"job_id"                yaml:"job_id"`
	State       string     `json:"state"                 yaml:"state"`
	ExitCode    int        `json:"exit_code"             yaml:"exit_code"`
	MachineName string     `json:"machine_name,omitempty" yaml:"machine_name,omitempty"`
	Queued      time.Time  `json:"queued"                yaml:"queued"`
	Started     *time.Time `json:"started,omitempty"     yaml:"started,omitempty"`
	Finished    *time.Time `json:"finished,omitempty"    yaml:"finished,omitempty"`
	ConsoleURL  string     `json:"console_url,omitempty" yaml:"console_url,omitempty"`
}

// WorkItemRequest describes one unit of work inside a JobRequest.
type WorkItemRequest struct {
	Name       string `json:"name"                  yaml:"name"`
	Command    string `json:"command"               yaml:"command"`
	PayloadURL string `json:"payload_url,omitempty" yaml:"payload_url,omitempty"`
	Timeout    int    `json:"timeout,omitempty"     yaml:"timeout,omitempty"`
}

// Build represents one produced build registered with the service.
type Build struct {
	ID           int64     `json:"id"            yaml:"id"`
	Repository   string    `json:"repository"    yaml:"repository"`
	Branch       string    `json:"branch"        yaml:"branch"`
	Commit       string    `json:"commit"        yaml:"commit"`
	BuildNumber  string    `json:"build_number"  yaml:"build_number"`
	DateProduced time.Time `json:"date_produced" yaml:"date_produced"`
}

// QueueInfo describes one machine queue jobs can target.
type QueueInfo struct {
	ID              string `json:"id"               yaml:"id"`
	Purpose         string `json:"purpose"          yaml:"purpose"`
	OperatingSystem string `json:"operating_system" yaml:"operating_system"`
	Available       bool   `json:"available"        yaml:"available"`
	WorkItemCount   int    `json:"work_item_count"  yaml:"work_item_count"`
}

// APIInfo is the service root document, including discovery links.
type APIInfo struct {
	Name    string          `json:"name"    yaml:"name"`
	Version string          `json:"version" yaml:"version"`
	Links   map[string]Link `json:"links"   yaml:"links"`
}

// Link represents a single discovery link in APIInfo.
type Link struct {
	Href string `json:"href" yaml:"href"`
}
