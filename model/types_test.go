package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToleranceOr(t *testing.T) {
	r := RelationRule{}
	assert.Equal(t, 0.5, r.ToleranceOr(0.5))

	tol := 2.0
	r.Tolerance = &tol
	assert.Equal(t, 2.0, r.ToleranceOr(0.5))
}

func TestValidationResultCounters(t *testing.T) {
	r := NewValidationResult()
	require.True(t, r.IsValid)

	r.Add(ValidationError{ErrorCode: "A", Severity: SeverityError})
	r.Add(ValidationError{ErrorCode: "B", Severity: SeverityWarning})
	assert.Equal(t, 1, r.ErrorCount)
	assert.Equal(t, 1, r.WarningCount)
	assert.False(t, r.IsValid)
}

func TestRecountAfterFiltering(t *testing.T) {
	r := NewValidationResult()
	r.Add(ValidationError{ErrorCode: "A", Severity: SeverityError})
	r.Add(ValidationError{ErrorCode: "B", Severity: SeverityError})
	r.Add(ValidationError{ErrorCode: "C", Severity: SeverityWarning})
	require.Equal(t, 2, r.ErrorCount)

	// Drop the error-severity findings and recount.
	r.Errors = r.Errors[2:]
	r.Recount()
	assert.Equal(t, 0, r.ErrorCount)
	assert.Equal(t, 1, r.WarningCount)
	assert.True(t, r.IsValid)
}

func TestSetMeta(t *testing.T) {
	var e ValidationError
	e.SetMeta("OtherFeatureId", int64(7))
	e.SetMeta("Field", "KIND")
	require.NotNil(t, e.Metadata)
	assert.Equal(t, int64(7), e.Metadata["OtherFeatureId"])
	assert.Equal(t, "KIND", e.Metadata["Field"])
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
