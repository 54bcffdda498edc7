package light_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	light "github.com/informalsystems/go-light-scheduler/light"
)

func TestErrorPredicatesAreDisjoint(t *testing.T) {
	errs := map[string]error{
		"insufficient_voting_power": light.ErrInsufficientVotingPower(1, 2),
		"invalid_commit":            light.ErrInvalidCommit("x"),
		"invalid_commit_value":      light.ErrInvalidCommitValue("x"),
		"invalid_validator_set":     light.ErrInvalidValidatorSet("x"),
		"invalid_next_validator_set": light.ErrInvalidNextValidatorSet("x"),
		"insufficient_validators_overlap": light.ErrInsufficientValidatorsOverlap("x"),
		"non_increasing_height":    light.ErrNonIncreasingHeight(1, 2),
		"non_monotonic_bft_time":   light.ErrNonMonotonicBftTime("x"),
		"not_within_trust_period":  light.ErrNotWithinTrustPeriod("x"),
		"implementation_specific":  light.ErrImplementationSpecific("x"),
	}

	predicates := map[string]func(error) bool{
		"insufficient_voting_power":       light.IsErrInsufficientVotingPower,
		"invalid_commit":                  light.IsErrInvalidCommit,
		"invalid_commit_value":            light.IsErrInvalidCommitValue,
		"invalid_validator_set":           light.IsErrInvalidValidatorSet,
		"invalid_next_validator_set":      light.IsErrInvalidNextValidatorSet,
		"insufficient_validators_overlap": light.IsErrInsufficientValidatorsOverlap,
		"non_increasing_height":           light.IsErrNonIncreasingHeight,
		"non_monotonic_bft_time":          light.IsErrNonMonotonicBftTime,
		"not_within_trust_period":         light.IsErrNotWithinTrustPeriod,
		"implementation_specific":         light.IsErrImplementationSpecific,
	}

	for produced, err := range errs {
		for checked, pred := range predicates {
			if produced == checked {
				assert.True(t, pred(err), "%s should match its own predicate", produced)
			} else {
				assert.False(t, pred(err), "%s should not match %s's predicate", produced, checked)
			}
		}
	}
}

func TestErrInvalidLightBlockUnwrapsCause(t *testing.T) {
	cause := light.ErrInvalidCommit("bad signature")
	wrapped := light.ErrInvalidLightBlock(cause)

	got, ok := light.IsErrInvalidLightBlock(wrapped)
	assert.True(t, ok)
	assert.True(t, light.IsErrInvalidCommit(got))
}

func TestErrFetchFailedUnwrapsCause(t *testing.T) {
	cause := light.ErrFetchNotFound(42)
	wrapped := light.ErrFetchFailed(cause)

	got, ok := light.IsErrFetchFailed(wrapped)
	assert.True(t, ok)
	assert.True(t, light.IsErrFetchNotFound(got))
}

func TestFetchErrorPredicates(t *testing.T) {
	assert.True(t, light.IsErrFetchIO(light.ErrFetchIO("boom")))
	assert.False(t, light.IsErrFetchIO(light.ErrFetchCancelled()))

	assert.True(t, light.IsErrFetchNotFound(light.ErrFetchNotFound(5)))
	assert.False(t, light.IsErrFetchNotFound(light.ErrFetchIO("boom")))

	assert.True(t, light.IsErrFetchCancelled(light.ErrFetchCancelled()))
	assert.False(t, light.IsErrFetchCancelled(light.ErrFetchNotFound(5)))
}

func TestHeightOverflowAndInvalidInputPredicates(t *testing.T) {
	assert.True(t, light.IsErrHeightOverflow(light.ErrHeightOverflow()))
	assert.False(t, light.IsErrHeightOverflow(light.ErrInvalidInput("x")))

	assert.True(t, light.IsErrInvalidInput(light.ErrInvalidInput("x")))
	assert.False(t, light.IsErrInvalidInput(light.ErrHeightOverflow()))
}
