package constants

// Obligation status markers. An overdue obligation carries "overdue N days".
const (
	StatusCurrent = "current"
	StatusActive  = "active"
	StatusOverdue = "overdue"
)

// ParseQuality grades how much of a report the parser could read.
type ParseQuality string

const (
	QualityHigh   ParseQuality = "high"
	QualityMedium ParseQuality = "medium"
	QualityLow    ParseQuality = "low"
)

// Procedure is the recommended bankruptcy route.
type Procedure string

const (
	ProcedureExtrajudicial Procedure = "extrajudicial"
	ProcedureJudicial      Procedure = "judicial"
	ProcedureRestoration   Procedure = "restoration"
)

// NotFound is the sentinel written into string fields the parser could not read.
const NotFound = "NOT_FOUND"

// JobStatus is the canonical status for rows in the result store.
type JobStatus string

const (
	JobStatusQueued JobStatus = "QUEUED"
	JobStatusDone   JobStatus = "DONE"
	JobStatusFailed JobStatus = "FAILED" // extraction aborted
)
