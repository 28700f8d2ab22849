package model

import "time"

// RunMode is the CLI mode a run was started with.
type RunMode string

const (
	RunModeTest    RunMode = "test"
	RunModeCollect RunMode = "get_submission_data"
	RunModeExpand  RunMode = "expand_misinfo_network"
)

// RunStatus represents the current state of a run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one CLI invocation recorded in the run ledger.
type Run struct {
	ID        string     `json:"id" yaml:"id"`
	Mode      RunMode    `json:"mode" yaml:"mode"`
	Status    RunStatus  `json:"status" yaml:"status"`
	Result    *RunResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
}

// RunResult summarizes what a run did.
type RunResult struct {
	Lookback          Lookback           `json:"lookback,omitempty" yaml:"lookback,omitempty"`
	Collections       int                `json:"collections" yaml:"collections"`
	Fetched           int                `json:"fetched" yaml:"fetched"`
	Skipped           int                `json:"skipped" yaml:"skipped"`
	Written           int                `json:"written" yaml:"written"`
	Detected          int                `json:"detected" yaml:"detected"`
	FailedCollections []string           `json:"failed_collections,omitempty" yaml:"failed_collections,omitempty"`
	DomainCounts      map[string]int     `json:"domain_counts,omitempty" yaml:"domain_counts,omitempty"`
	Candidates        []NetworkCandidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}
