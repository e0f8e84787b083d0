// Package model defines the shared value types exchanged between the
// relation-check engine, its evaluators and callers: rules, validation
// results, errors and progress events.
package model

// CaseType identifies which relationship algorithm a rule invokes.
type CaseType string

// Registered case types, grouped by evaluator family.
const (
	// Containment family.
	CasePointCoverage        CaseType = "PointCoverage"
	CasePointWithinPolygon   CaseType = "PointWithinPolygon"
	CaseLineWithinPolygon    CaseType = "LineWithinPolygon"
	CasePolygonWithinPolygon CaseType = "PolygonWithinPolygon"
	CasePolygonContainsLine  CaseType = "PolygonContainsLine"
	CaseVertexAlignment      CaseType = "VertexAlignment"

	// Exclusion family.
	CasePolygonNotOverlap        CaseType = "PolygonNotOverlap"
	CasePolygonNotOverlapRelated CaseType = "PolygonNotOverlapRelated"
	CasePolygonNotIntersectLine  CaseType = "PolygonNotIntersectLine"
	CasePolygonNotContainPoint   CaseType = "PolygonNotContainPoint"

	// Connectivity family.
	CaseLineConnectivity        CaseType = "LineConnectivity"
	CaseLineDisconnection       CaseType = "LineDisconnection"
	CaseLineConnectivityByField CaseType = "LineConnectivityByField"
	CaseLineDisconnectByField   CaseType = "LineDisconnectionByField"

	// Consistency family.
	CaseConnectedFieldConsistency CaseType = "ConnectedFieldConsistency"
	CaseCenterlineFieldMismatch   CaseType = "CenterlineFieldMismatch"

	// Geometry-quality family.
	CaseSharpBend         CaseType = "SharpBend"
	CaseSelfIntersection  CaseType = "SelfIntersection"
	CaseLineCrossLine     CaseType = "LineCrossLine"
	CaseHoleDuplicate     CaseType = "HoleDuplicate"
	CaseDuplicateGeometry CaseType = "DuplicateGeometry"

	// Density family.
	CasePointSpacing          CaseType = "PointSpacing"
	CasePointSpacingBySurface CaseType = "PointSpacingBySurface"
	CaseVertexSpacing         CaseType = "VertexSpacing"
)

// RelationRule describes one declarative relation check between a main layer
// and an optional related layer. Rules are immutable once loaded; one rule
// triggers exactly one evaluator invocation per Process call.
type RelationRule struct {
	RuleID           string
	CaseType         CaseType
	MainTableID      string
	MainTableName    string
	RelatedTableID   string
	RelatedTableName string
	// FieldFilter is a constrained SQL-like expression restricting which
	// features participate (equality, IN, NOT IN, joined by AND).
	FieldFilter string
	// Tolerance overrides the per-case default when non-nil.
	Tolerance *float64
}

// ToleranceOr returns the rule tolerance, or def when the rule carries none.
func (r RelationRule) ToleranceOr(def float64) float64 {
	if r.Tolerance != nil {
		return *r.Tolerance
	}
	return def
}

// Severity classifies how serious a validation error is.
type Severity int

const (
	// SeverityInfo marks findings that are informational only.
	SeverityInfo Severity = iota
	// SeverityWarning marks findings that should be reviewed.
	SeverityWarning
	// SeverityError marks definite rule violations.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MetadataRelationType is the metadata key backfilled with the rule case type
// on every error an evaluator produces.
const MetadataRelationType = "RelationType"

// Metadata keys for cross-table errors.
const (
	MetadataRelatedTableID   = "RelatedTableId"
	MetadataRelatedTableName = "RelatedTableName"
)

// ValidationError is one geolocated finding. X/Y are derived centroid
// coordinates, not authoritative input.
type ValidationError struct {
	ErrorCode string
	Message   string
	TableID   string
	TableName string
	FeatureID int64
	Severity  Severity
	X         float64
	Y         float64
	Metadata  map[string]any
}

// SetMeta assigns a metadata entry, allocating the map on first use.
func (e *ValidationError) SetMeta(key string, value any) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any, 4)
	}
	e.Metadata[key] = value
}

// ValidationResult accumulates the findings of one Process call. It is
// mutated by every evaluator and must not be read concurrently with writes;
// a Process call is single-threaded by contract.
type ValidationResult struct {
	IsValid      bool
	CheckedRules int
	SkippedRules int
	ErrorCount   int
	WarningCount int
	Errors       []ValidationError
}

// NewValidationResult returns an empty result that is valid until the first
// error-severity finding is added.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

// Add appends a finding and updates the counters.
func (r *ValidationResult) Add(e ValidationError) {
	r.Errors = append(r.Errors, e)
	switch e.Severity {
	case SeverityWarning:
		r.WarningCount++
	default:
		r.ErrorCount++
		r.IsValid = false
	}
}

// Recount rebuilds the counters from the findings. Callers that filter
// Errors after collection use it to keep the summary honest.
func (r *ValidationResult) Recount() {
	r.ErrorCount, r.WarningCount = 0, 0
	r.IsValid = true
	for _, e := range r.Errors {
		switch e.Severity {
		case SeverityWarning:
			r.WarningCount++
		default:
			r.ErrorCount++
			r.IsValid = false
		}
	}
}

// ProgressEvent reports evaluator progress. Events are rate-limited to a
// human-perceptible cadence; only the final event has Completed set.
type ProgressEvent struct {
	CaseType  CaseType
	Processed int
	Total     int
	Completed bool
}
