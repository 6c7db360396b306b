package grader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildQuerySelectsIdentityField(t *testing.T) {
	identity := Identity{
		UserID:             "42",
		Email:              "learner@example.com",
		Username:           "learner",
		AnonymousStudentID: "anon-1234",
	}

	cases := map[string]string{
		"email":                "learner@example.com",
		"username":             "learner",
		"user_id":              "42",
		"anonymous_student_id": "anon-1234",
	}

	for kind, expected := range cases {
		cfg := Config{UserIdentifier: kind, UserIdentifierParameter: "who"}
		values := BuildQuery(cfg, identity)
		require.Equal(t, expected, values.Get("who"), "identifier kind %s", kind)
	}
}

func TestBuildQueryActivityPairRequiresBothParts(t *testing.T) {
	identity := Identity{Email: "learner@example.com"}

	cfg := Config{
		UserIdentifier:              "email",
		UserIdentifierParameter:     "email",
		ActivityIdentifierParameter: "unit_id",
	}
	values := BuildQuery(cfg, identity)
	require.False(t, values.Has("unit_id"))

	cfg.ActivityIdentifier = "unit-7"
	values = BuildQuery(cfg, identity)
	require.Equal(t, "unit-7", values.Get("unit_id"))
}

func TestBuildQueryExtraParams(t *testing.T) {
	identity := Identity{Email: "learner@example.com"}
	cfg := Config{
		UserIdentifier:          "email",
		UserIdentifierParameter: "email",
		ExtraParams:             "course=hist101&cohort=b",
	}

	values := BuildQuery(cfg, identity)
	require.Equal(t, "hist101", values.Get("course"))
	require.Equal(t, "b", values.Get("cohort"))
	require.Equal(t, "learner@example.com", values.Get("email"))
}

func TestBuildQueryExtraParamsNeverOverrideReservedKeys(t *testing.T) {
	identity := Identity{Email: "learner@example.com"}
	cfg := Config{
		UserIdentifier:              "email",
		UserIdentifierParameter:     "email",
		ActivityIdentifier:          "unit-7",
		ActivityIdentifierParameter: "unit_id",
		ExtraParams:                 "email=spoof@example.com&unit_id=other",
	}

	values := BuildQuery(cfg, identity)
	require.Equal(t, "learner@example.com", values.Get("email"))
	require.Equal(t, "unit-7", values.Get("unit_id"))
}

func TestBuildQueryDropsMalformedSegments(t *testing.T) {
	identity := Identity{Email: "learner@example.com"}
	cfg := Config{
		UserIdentifier:          "email",
		UserIdentifierParameter: "email",
		ExtraParams:             "novalue&=orphan&ok=1",
	}

	values := BuildQuery(cfg, identity)
	require.False(t, values.Has("novalue"))
	require.Equal(t, "1", values.Get("ok"))
	require.Len(t, values, 2)
}
