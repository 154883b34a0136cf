package domain

import (
	"time"

	"github.com/google/uuid"
)

// Section headers the engine is asked to emit
const (
	HeaderWhatIsGood  = "What is good"
	HeaderBeAlert     = "Be Alert!"
	HeaderNeedToCheck = "Need to check!"
)

// ReportSource identifies where the report text came from
type ReportSource string

const (
	ReportSourceUpload ReportSource = "upload"
	ReportSourceSample ReportSource = "sample"
)

// SampleReportType is the report type recorded for the built-in sample
const SampleReportType = "Sample Report"

// AnalysisState is a step of the analysis pipeline
type AnalysisState string

const (
	StateIdle        AnalysisState = "idle"
	StateRateChecked AnalysisState = "rate_checked"
	StateDispatched  AnalysisState = "dispatched"
	StateParsed      AnalysisState = "parsed"
	StatePersisted   AnalysisState = "persisted"
	StateFailed      AnalysisState = "failed"
)

// AnalysisSections holds the three interpretation buckets.
// Absent sections are empty strings.
type AnalysisSections struct {
	WhatIsGood  string `json:"what_is_good"`
	BeAlert     string `json:"be_alert"`
	NeedToCheck string `json:"need_to_check"`
}

// AnalysisRecord is the structured output of one successful analysis
type AnalysisRecord struct {
	UserID      uuid.UUID        `json:"user_id"`
	SessionID   uuid.UUID        `json:"session_id"`
	PatientName string           `json:"patient_name"`
	Age         int              `json:"age"`
	Gender      string           `json:"gender"`
	ReportType  string           `json:"report_type"`
	Analysis    AnalysisSections `json:"analysis"`
	AnalyzedAt  time.Time        `json:"analyzed_at"`
}

// AnalysisRequest is a user submission for analysis
type AnalysisRequest struct {
	SessionID    uuid.UUID    `json:"session_id"`
	PatientName  string       `json:"patient_name" validate:"required,max=255"`
	Age          int          `json:"age" validate:"required,min=1,max=120"`
	Gender       string       `json:"gender" validate:"required,oneof=Male Female Other"`
	ReportSource ReportSource `json:"report_source" validate:"omitempty,oneof=upload sample"`
	ReportText   string       `json:"report_text"`
	ReportName   string       `json:"report_name" validate:"max=255"`
}

// AnalysisOutcome is what the pipeline reports back to the caller
type AnalysisOutcome struct {
	State      AnalysisState   `json:"state"`
	Record     *AnalysisRecord `json:"record,omitempty"`
	LastResult string          `json:"last_result,omitempty"`
	LastError  string          `json:"last_error,omitempty"`
	ModelUsed  string          `json:"model_used,omitempty"`

	// HistorySaved is false when the record could not be added to the
	// exportable history; Notice then says so.
	HistorySaved bool   `json:"history_saved"`
	Notice       string `json:"notice,omitempty"`
}
