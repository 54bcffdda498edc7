package light_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	light "github.com/informalsystems/go-light-scheduler/light"
	"github.com/informalsystems/go-light-scheduler/light/mock"
	"github.com/informalsystems/go-light-scheduler/light/store"
)

func testValidatorSet() *light.ValidatorSet {
	return light.NewValidatorSet(light.Hash("vals"), []light.Validator{
		{Address: "v1", VotingPower: 10},
		{Address: "v2", VotingPower: 10},
		{Address: "v3", VotingPower: 10},
	})
}

func testOpts(now time.Time) light.VerificationOptions {
	return light.VerificationOptions{
		TrustThreshold: light.DefaultTrustThreshold,
		TrustingPeriod: 336 * time.Hour,
		Now:            now,
	}
}

func trustedAt(height light.Height, t time.Time) light.TrustedState {
	return light.TrustedState{
		Header: light.Header{
			Height:               height,
			BFTTime:              t,
			ValidatorSetHash:     light.Hash("vals"),
			NextValidatorSetHash: light.Hash("vals"),
			HeaderHash:           light.Hash("header"),
		},
		Validators: testValidatorSet(),
	}
}

func lightBlockAt(height light.Height, t time.Time) light.LightBlock {
	header := light.Header{
		Height:               height,
		BFTTime:              t,
		ValidatorSetHash:     light.Hash("vals"),
		NextValidatorSetHash: light.Hash("vals"),
		HeaderHash:           light.Hash("header"),
	}
	vals := testValidatorSet()
	return light.LightBlock{
		Height: height,
		SignedHeader: light.SignedHeader{
			Header:         header,
			Commit:         light.Commit{HeaderHash: light.Hash("header")},
			Validators:     vals,
			ValidatorsHash: vals.Hash(),
		},
		ValidatorSet:     vals,
		NextValidatorSet: vals,
	}
}

func TestVerifyStoreShortcut(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trusted := trustedAt(10, now.Add(-24*time.Hour))
	target := lightBlockAt(20, now.Add(-time.Hour))

	memStore := store.NewMemStore()
	stored := trustedAt(20, now.Add(-time.Hour))
	memStore.Save(stored)

	router := mock.NewRouter(t)
	sched := light.NewScheduler(memStore, nil)

	got, err := sched.Verify(router, trusted, target, testOpts(now))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, light.Height(20), got[0].Header.Height)
	assert.Equal(t, 0, router.VerifierInvocations())
	assert.Equal(t, 0, router.FetchInvocations())
}

func TestVerifyDirectSuccess(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trusted := trustedAt(10, now.Add(-24*time.Hour))
	target := lightBlockAt(20, now.Add(-time.Hour))

	memStore := store.NewMemStore()
	router := mock.NewRouter(t)
	router.OnVerify(10, 20, light.VerificationSucceeded(trustedAt(20, now.Add(-time.Hour))))

	sched := light.NewScheduler(memStore, nil)
	got, err := sched.Verify(router, trusted, target, testOpts(now))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, light.Height(20), got[0].Header.Height)
	router.AssertAllScriptedCallsUsed()
}

func TestVerifyOneLevelBisection(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trusted := trustedAt(10, now.Add(-24*time.Hour))
	target := lightBlockAt(20, now.Add(-time.Hour))
	pivot := lightBlockAt(15, now.Add(-2*time.Hour))

	memStore := store.NewMemStore()
	router := mock.NewRouter(t)
	router.OnVerify(10, 20, light.VerificationFailed(light.ErrInsufficientVotingPower(5, 10)))
	router.OnFetch(15, light.FetchedLightBlock(pivot))
	router.OnVerify(10, 15, light.VerificationSucceeded(trustedAt(15, now.Add(-2*time.Hour))))
	router.OnVerify(15, 20, light.VerificationSucceeded(trustedAt(20, now.Add(-time.Hour))))

	sched := light.NewScheduler(memStore, nil)
	got, err := sched.Verify(router, trusted, target, testOpts(now))
	require.NoError(t, err)

	heights := make([]light.Height, len(got))
	for i, ts := range got {
		heights[i] = ts.Header.Height
	}
	assert.Equal(t, []light.Height{15, 20}, heights)
	assert.True(t, light.IsAscendingByHeight(got))
	assert.Equal(t, 1, router.FetchInvocations())
	assert.Equal(t, 3, router.VerifierInvocations())
	router.AssertAllScriptedCallsUsed()
}

func TestVerifyFatalAbortsWithoutBisecting(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trusted := trustedAt(10, now.Add(-24*time.Hour))
	target := lightBlockAt(20, now.Add(-time.Hour))

	memStore := store.NewMemStore()
	router := mock.NewRouter(t)
	router.OnVerify(10, 20, light.VerificationFailed(light.ErrInvalidCommit("signature mismatch")))

	sched := light.NewScheduler(memStore, nil)
	got, err := sched.Verify(router, trusted, target, testOpts(now))
	require.Error(t, err)
	assert.Nil(t, got)

	cause, ok := light.IsErrInvalidLightBlock(err)
	require.True(t, ok)
	assert.True(t, light.IsErrInvalidCommit(cause))
	assert.Equal(t, 0, router.FetchInvocations())
	router.AssertAllScriptedCallsUsed()
}

func TestVerifyGapOneInsufficientVotingPowerIsFatal(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trusted := trustedAt(12, now.Add(-24*time.Hour))
	target := lightBlockAt(13, now.Add(-time.Hour))

	memStore := store.NewMemStore()
	router := mock.NewRouter(t)
	router.OnVerify(12, 13, light.VerificationFailed(light.ErrInsufficientVotingPower(10, 10)))

	sched := light.NewScheduler(memStore, nil)
	got, err := sched.Verify(router, trusted, target, testOpts(now))
	require.Error(t, err)
	assert.Nil(t, got)
	_, ok := light.IsErrInvalidLightBlock(err)
	assert.True(t, ok)
	assert.Equal(t, 0, router.FetchInvocations(), "a gap of 1 must never trigger a fetch")
}

func TestVerifyRejectsNonIncreasingTrustedHeight(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trusted := trustedAt(20, now.Add(-time.Hour))
	target := lightBlockAt(10, now.Add(-24*time.Hour))

	memStore := store.NewMemStore()
	router := mock.NewRouter(t)
	sched := light.NewScheduler(memStore, nil)

	_, err := sched.Verify(router, trusted, target, testOpts(now))
	require.Error(t, err)
	assert.True(t, light.IsErrInvalidInput(err))
}

func TestVerifyBisectionAbortsFetchFailure(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trusted := trustedAt(10, now.Add(-24*time.Hour))
	target := lightBlockAt(20, now.Add(-time.Hour))

	memStore := store.NewMemStore()
	router := mock.NewRouter(t)
	router.OnVerify(10, 20, light.VerificationFailed(light.ErrInsufficientVotingPower(5, 10)))
	router.OnFetch(15, light.FetchFailed(light.ErrFetchIO("connection reset")))

	sched := light.NewScheduler(memStore, nil)
	got, err := sched.Verify(router, trusted, target, testOpts(now))
	require.Error(t, err)
	assert.Nil(t, got)
	cause, ok := light.IsErrFetchFailed(err)
	require.True(t, ok)
	assert.True(t, light.IsErrFetchIO(cause))
}
