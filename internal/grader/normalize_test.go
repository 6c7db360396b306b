package grader

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func gradePtr(v float64) *float64 {
	return &v
}

func TestGradeFromList(t *testing.T) {
	require.Equal(t, 0, GradeFromList(nil))
	require.Equal(t, 0, GradeFromList([]float64{0}))
	require.Equal(t, 100, GradeFromList([]float64{1}))
	require.Equal(t, 200, GradeFromList([]float64{2}))
	require.Equal(t, 0, GradeFromList([]float64{0, 0}))
	require.Equal(t, 100, GradeFromList([]float64{1, 1}))
	require.Equal(t, 50, GradeFromList([]float64{1, 0}))
	// truncating division: 100/3 floors to 33
	require.Equal(t, 33, GradeFromList([]float64{1, 0, 0}))
	require.Equal(t, 100, GradeFromList([]float64{1, 1, 1}))
}

func TestNormalizeSingleResults(t *testing.T) {
	passed := Normalize([]ResultEntry{{AssignmentID: float64(1), Grade: gradePtr(1), Reason: "Passed"}})
	require.Equal(t, 100, passed.Grade)
	require.Equal(t, []string{"Assignment 1: Passed"}, passed.Reasons)

	failed := Normalize([]ResultEntry{{AssignmentID: float64(1), Grade: gradePtr(0), Reason: "missing data set"}})
	require.Equal(t, 0, failed.Grade)
	require.Equal(t, []string{"Assignment 1: Failed - missing data set"}, failed.Reasons)
}

func TestNormalizeMultipleResultsKeepsOrder(t *testing.T) {
	normalized := Normalize([]ResultEntry{
		{AssignmentID: float64(1), Grade: gradePtr(1), Reason: "Passed"},
		{AssignmentID: float64(2), Grade: gradePtr(0), Reason: "no data entered"},
		{AssignmentID: float64(3), Grade: gradePtr(0), Reason: "no data elements"},
	})

	require.Equal(t, 33, normalized.Grade)
	require.Equal(t, []string{
		"Assignment 1: Passed",
		"Assignment 2: Failed - no data entered",
		"Assignment 3: Failed - no data elements",
	}, normalized.Reasons)
}

func TestNormalizeEmptyResults(t *testing.T) {
	normalized := Normalize(nil)
	require.Equal(t, 0, normalized.Grade)
	require.Empty(t, normalized.Reasons)
}

func TestNormalizeUnscoredEntriesProduceReasonOnly(t *testing.T) {
	normalized := Normalize([]ResultEntry{
		{AssignmentID: "setup", Reason: "informational only"},
		{AssignmentID: float64(2), Grade: gradePtr(1), Reason: "Passed"},
	})

	// one scored entry only: single-entry scaling applies
	require.Equal(t, 100, normalized.Grade)
	require.Equal(t, []string{"setup: informational only", "Assignment 2: Passed"}, normalized.Reasons)
}

func TestParseResponseSuccess(t *testing.T) {
	body := []byte(`{
		"results": [
			{"assignment_id": 1, "grade": 1, "reason": "Passed"},
			{"assignment_id": 2, "grade": 1, "reason": "Passed"},
			{"assignment_id": 3, "grade": 1, "reason": "Passed"}
		],
		"username": "test@example.com"
	}`)

	normalized, err := ParseResponse(http.StatusOK, body)
	require.NoError(t, err)
	require.Equal(t, 100, normalized.Grade)
	require.Len(t, normalized.Reasons, 3)
}

func TestParseResponseServerErrorSurfacesMessageVerbatim(t *testing.T) {
	body := []byte(`{"errorMessage": "local variable 'users_object' referenced before assignment", "status": "error"}`)

	_, err := ParseResponse(http.StatusInternalServerError, body)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	require.Equal(t, "local variable 'users_object' referenced before assignment", upstream.Message)
}

func TestParseResponseMissingResultsMeansAccountNotFound(t *testing.T) {
	body := []byte(`{"errorMessage": "We couldn't find your account", "status": "error"}`)

	_, err := ParseResponse(http.StatusNotFound, body)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusNotFound, upstream.StatusCode)
	require.Equal(t, AccountNotFoundMessage, upstream.Message)
}

func TestParseResponseGarbageBody(t *testing.T) {
	_, err := ParseResponse(http.StatusOK, []byte("not json"))
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, AccountNotFoundMessage, upstream.Message)
}
