// backend/models/ministry.go
package models

import "time"

// MinistryRollup aggregates the budget lines classified under one ministry code.
// Lines is a read-only view over lines owned by the snapshot.
type MinistryRollup struct {
	Code                string       `json:"code"`
	Name                string       `json:"name"`
	Budget              float64      `json:"budget"`
	Approved            float64      `json:"approved"`
	Modifications       float64      `json:"modifications"`
	Current             float64      `json:"current"`
	Executed            float64      `json:"executed"`
	ExecutionPercentage float64      `json:"executionPercentage"`
	Percentage          float64      `json:"percentage"`
	Lines               []BudgetLine `json:"lines"`
}

// StandardBudget is the application-wide budget contract built from a BCN snapshot.
type StandardBudget struct {
	Year                int              `json:"year"`
	TotalBudget         float64          `json:"totalBudget"`
	TotalApproved       float64          `json:"totalApproved"`
	TotalModifications  float64          `json:"totalModifications"`
	TotalExecuted       float64          `json:"totalExecuted"`
	ExecutionPercentage float64          `json:"executionPercentage"`
	Currency            string           `json:"currency"`
	LastUpdated         time.Time        `json:"lastUpdated"`
	Source              string           `json:"source"`
	SourceURL           string           `json:"sourceUrl"`
	IsRealData          bool             `json:"isRealData"`
	Ministries          []MinistryRollup `json:"ministries"`
	MinistriesCount     int              `json:"ministriesCount"`
	LinesCount          int              `json:"linesCount"`
}
