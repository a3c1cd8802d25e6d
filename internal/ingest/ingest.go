// Package ingest moves library records into the remote catalog and keeps a
// ledger of every run.
package ingest

import (
	"time"
)

type Kind string

const (
	KindSync     Kind = "sync"
	KindRegister Kind = "register"
	KindBackfill Kind = "backfill"
)

type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Tally counts per-record outcomes of a run.
type Tally struct {
	Seen    int `json:"seen"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Failure is a record the run gave up on.
type Failure struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

type Run struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"kind"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     Status     `json:"status"`
	Tally      Tally      `json:"tally"`
	Failures   []Failure  `json:"failures,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func (r *Run) fail(title string, err error) {
	r.Tally.Failed++
	r.Failures = append(r.Failures, Failure{Title: title, Error: err.Error()})
}
