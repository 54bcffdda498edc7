// Package golden runs table-driven Scheduler verification scenarios
// described as JSON fixtures against a mock Router. RunDir walks a
// directory of fixtures recursively, ignoring path components starting
// with "_", and runs each file as either a single scenario or a named
// batch of scenarios, each as its own t.Run subtest.
package golden

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	light "github.com/informalsystems/go-light-scheduler/light"
	"github.com/informalsystems/go-light-scheduler/light/mock"
	"github.com/informalsystems/go-light-scheduler/light/store"
)

// RunDir walks root recursively, running every ".json" fixture it finds as
// a subtest named after its path relative to root. Any path component
// beginning with "_" is skipped entirely, so scratch or generated
// directories can live alongside fixtures without being picked up.
func RunDir(t *testing.T, root string) {
	t.Helper()

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() != "." && strings.HasPrefix(info.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), "_") || !strings.HasSuffix(info.Name(), ".json") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		t.Run(rel, func(t *testing.T) {
			RunFile(t, path)
		})
		return nil
	})
	require.NoError(t, err)
}

// RunFile loads path as either a single Scenario or a Batch, and runs it.
func RunFile(t *testing.T, path string) {
	t.Helper()

	raw, err := os.ReadFile(path)
	require.NoError(t, err, "reading %s", path)

	var batch Batch
	if err := json.Unmarshal(raw, &batch); err == nil && len(batch.Cases) > 0 {
		for name, scenario := range batch.Cases {
			scenario := scenario
			t.Run(name, func(t *testing.T) {
				RunScenario(t, scenario)
			})
		}
		return
	}

	var scenario Scenario
	require.NoError(t, json.Unmarshal(raw, &scenario), "parsing %s as scenario or batch", path)
	RunScenario(t, scenario)
}

// RunScenario builds the Scheduler inputs described by s, runs
// Scheduler.Verify, and asserts the outcome against s.ExpectedResult.
func RunScenario(t *testing.T, s Scenario) {
	t.Helper()

	trusted, err := s.InitialTrustedState.build()
	require.NoError(t, err, "initial_trusted_state")

	target, err := s.TargetLightBlock.build()
	require.NoError(t, err, "target_light_block")

	opts, err := s.VerificationOptions.build()
	require.NoError(t, err, "verification_options")

	memStore := store.NewMemStore()
	for _, js := range s.StoredStates {
		ts, err := js.build()
		require.NoError(t, err, "stored_states")
		memStore.Save(ts)
	}

	router := mock.NewRouter(t)
	for _, jr := range s.MockVerifierResponses {
		resp, err := jr.build()
		require.NoError(t, err, "mock_verifier_responses")
		router.OnVerify(jr.AnchorHeight, jr.Height, resp)
	}
	for _, jr := range s.MockFetcherResponses {
		resp, err := jr.build()
		require.NoError(t, err, "mock_fetcher_responses")
		router.OnFetch(jr.Height, resp)
	}

	sched := light.NewScheduler(memStore, nil)
	got, verifyErr := sched.Verify(router, trusted, target, opts)

	if s.ExpectedResult.Err != nil {
		assertExpectedError(t, s.ExpectedResult.Err, verifyErr)
	} else {
		require.NoError(t, verifyErr)
		gotHeights := make([]light.Height, len(got))
		for i, ts := range got {
			gotHeights[i] = ts.Header.Height
		}
		assert.Equal(t, s.ExpectedResult.OkHeights, gotHeights)
		assert.True(t, light.IsAscendingByHeight(got), "chain must be strictly ascending by height")
	}

	if s.ExpectedVerifierCalls != nil {
		assert.Equal(t, *s.ExpectedVerifierCalls, router.VerifierInvocations())
	}
	if s.ExpectedFetchCalls != nil {
		assert.Equal(t, *s.ExpectedFetchCalls, router.FetchInvocations())
	}
}

func assertExpectedError(t *testing.T, expected *jsonExpectedError, actual error) {
	t.Helper()
	require.Error(t, actual)

	switch expected.Kind {
	case "invalid_light_block":
		cause, ok := light.IsErrInvalidLightBlock(actual)
		require.True(t, ok, "expected InvalidLightBlock, got %v", actual)
		if expected.VerifierKind != "" {
			assertVerifierErrorKind(t, expected.VerifierKind, cause)
		}
	case "fetch_failed":
		_, ok := light.IsErrFetchFailed(actual)
		require.True(t, ok, "expected FetchFailed, got %v", actual)
	case "height_overflow":
		require.True(t, light.IsErrHeightOverflow(actual), "expected HeightOverflow, got %v", actual)
	case "invalid_input":
		require.True(t, light.IsErrInvalidInput(actual), "expected InvalidInput, got %v", actual)
	default:
		t.Fatalf("unknown expected error kind %q", expected.Kind)
	}
}

func assertVerifierErrorKind(t *testing.T, kind string, err error) {
	t.Helper()
	checks := map[string]func(error) bool{
		"invalid_commit":                   light.IsErrInvalidCommit,
		"invalid_commit_value":             light.IsErrInvalidCommitValue,
		"invalid_validator_set":            light.IsErrInvalidValidatorSet,
		"invalid_next_validator_set":       light.IsErrInvalidNextValidatorSet,
		"insufficient_validators_overlap":  light.IsErrInsufficientValidatorsOverlap,
		"non_increasing_height":            light.IsErrNonIncreasingHeight,
		"non_monotonic_bft_time":           light.IsErrNonMonotonicBftTime,
		"not_within_trust_period":          light.IsErrNotWithinTrustPeriod,
		"implementation_specific":          light.IsErrImplementationSpecific,
	}
	check, ok := checks[kind]
	require.True(t, ok, "unknown verifier error kind %q", kind)
	require.True(t, check(err), "expected verifier error kind %q, got %v", kind, err)
}
