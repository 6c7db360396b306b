package grader

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
)

// AccountNotFoundMessage is returned when the grader answers without results
// and without a server-side error of its own.
const AccountNotFoundMessage = "We cannot find your account. Please make sure " +
	"that you have created your account. If you need assistance, please " +
	"contact the course team."

// ResultEntry is one scored or informational item in the grader's response.
// Grade is a pointer so that scored and unscored entries can be told apart.
type ResultEntry struct {
	AssignmentID interface{} `json:"assignment_id"`
	Grade        *float64    `json:"grade,omitempty"`
	Reason       string      `json:"reason"`
}

// Normalized is the outcome of a successful fetch: an aggregate percentage
// grade and one human-readable line per result entry, in grader order.
type Normalized struct {
	Grade   int
	Reasons []string
}

// ParseResponse interprets the grader's raw JSON body. A body without a
// "results" field is a failure: a 500 surfaces the service's own errorMessage
// verbatim, anything else becomes the fixed account-not-found message.
func ParseResponse(statusCode int, body []byte) (Normalized, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Normalized{}, upstreamFailure(statusCode, body)
	}

	rawResults, ok := envelope["results"]
	if !ok {
		return Normalized{}, upstreamFailure(statusCode, body)
	}

	var results []ResultEntry
	if err := json.Unmarshal(rawResults, &results); err != nil {
		return Normalized{}, upstreamFailure(statusCode, body)
	}

	return Normalize(results), nil
}

func upstreamFailure(statusCode int, body []byte) error {
	if statusCode == http.StatusInternalServerError {
		var failure struct {
			ErrorMessage string `json:"errorMessage"`
		}
		_ = json.Unmarshal(body, &failure)
		return &UpstreamError{StatusCode: statusCode, Message: failure.ErrorMessage}
	}

	return &UpstreamError{StatusCode: statusCode, Message: AccountNotFoundMessage}
}

// Normalize aggregates the result entries into a percentage grade and builds
// the per-assignment explanation lines in input order. Entries without a grade
// contribute a line but no score.
func Normalize(results []ResultEntry) Normalized {
	grades := make([]float64, 0, len(results))
	reasons := make([]string, 0, len(results))

	for _, entry := range results {
		id := formatAssignmentID(entry.AssignmentID)
		if entry.Grade == nil {
			reasons = append(reasons, fmt.Sprintf("%s: %s", id, entry.Reason))
			continue
		}

		grades = append(grades, *entry.Grade)
		if *entry.Grade > 0 {
			reasons = append(reasons, fmt.Sprintf("Assignment %s: Passed", id))
		} else {
			reasons = append(reasons, fmt.Sprintf("Assignment %s: Failed - %s", id, entry.Reason))
		}
	}

	return Normalized{Grade: GradeFromList(grades), Reasons: reasons}
}

// GradeFromList turns per-assignment grades into a single percentage. A single
// entry is scaled by 100 as-is; several entries are averaged with truncating
// division, so [1,0,0] yields 33, not 34.
func GradeFromList(grades []float64) int {
	switch len(grades) {
	case 0:
		return 0
	case 1:
		return int(grades[0] * 100)
	}

	total := 0.0
	for _, grade := range grades {
		total += grade
	}

	return int(math.Floor(total * 100 / float64(len(grades))))
}

func formatAssignmentID(id interface{}) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
