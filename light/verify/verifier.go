// Package verify provides a reference, stateless implementation of the
// Verifier contract: given a trusted anchor and a candidate light block,
// decide whether the anchor extends trust to the candidate.
//
// The voting-power and validator-set-hash checks below are grounded on
// tendermint/tendermint's pre-ILC "lite2" Verifier (expired /
// verifyNewHeaderAndVals / adjacent-vs-skipping branch) and on
// coinexchain-tendermint/lite's verifyAndSave / compareVotingPowers. Actual
// cryptographic signature checking is out of scope here; the commit's
// SignerAddresses stand in for the validators that produced a valid
// commit, and their voting power is summed against a validator set.
package verify

import (
	"fmt"

	light "github.com/informalsystems/go-light-scheduler/light"
)

// Default is the reference Verifier: a pure function of
// (TrustedState, LightBlock, VerificationOptions).
type Default struct{}

// NewDefault returns the reference Verifier.
func NewDefault() Default { return Default{} }

// Verify decides whether trusted extends trust to candidate. On success,
// the returned TrustedState's Header equals candidate.SignedHeader.Header
// and its Validators equal candidate.ValidatorSet.
func (Default) Verify(
	trusted light.TrustedState,
	candidate light.LightBlock,
	opts light.VerificationOptions,
) (light.TrustedState, error) {
	if err := candidate.Validate(); err != nil {
		return light.TrustedState{}, light.ErrImplementationSpecific(err.Error())
	}

	newHeader := candidate.SignedHeader.Header

	if newHeader.Height <= trusted.Header.Height {
		return light.TrustedState{}, light.ErrNonIncreasingHeight(newHeader.Height, trusted.Header.Height)
	}

	if !newHeader.BFTTime.After(trusted.Header.BFTTime) {
		return light.TrustedState{}, light.ErrNonMonotonicBftTime(fmt.Sprintf(
			"candidate time %s is not after trusted time %s", newHeader.BFTTime, trusted.Header.BFTTime))
	}

	if !opts.WithinTrustingPeriod(trusted.Header.BFTTime) {
		return light.TrustedState{}, light.ErrNotWithinTrustPeriod(fmt.Sprintf(
			"trusted header at height %d is older than the trusting period", trusted.Header.Height))
	}

	if !candidate.SignedHeader.Commit.HeaderHash.Equal(newHeader.HeaderHash) {
		return light.TrustedState{}, light.ErrInvalidCommitValue("commit does not attest to this header")
	}

	if !candidate.ValidatorSet.Hash().Equal(newHeader.ValidatorSetHash) {
		return light.TrustedState{}, light.ErrInvalidValidatorSet("validator set hash does not match header")
	}

	if !candidate.NextValidatorSet.Hash().Equal(newHeader.NextValidatorSetHash) {
		return light.TrustedState{}, light.ErrInvalidNextValidatorSet("next validator set hash does not match header")
	}

	adjacent := newHeader.Height == trusted.Header.Height+1

	if adjacent {
		// Adjacent headers must be signed by exactly the anchor's trusted
		// next validator set: no skip threshold applies, only the full
		// +2/3 commit check (modeled here via the signers' power vs TotalPower).
		if !candidate.ValidatorSet.Hash().Equal(trusted.Header.NextValidatorSetHash) {
			return light.TrustedState{}, light.ErrInvalidValidatorSet("validator set does not match trusted next validator set")
		}
		if err := verifyCommitFull(candidate.SignedHeader.Commit, candidate.ValidatorSet); err != nil {
			return light.TrustedState{}, err
		}
	} else {
		// Skipping: the commit must carry at least trustThreshold of the
		// anchor's *trusted* voting power (computed against trusted.Validators,
		// since that is the last set the observer actually trusts), and
		// still a full +2/3 of the candidate's own validator set.
		if err := verifyCommitTrusting(candidate.SignedHeader.Commit, trusted.Validators, opts.TrustThreshold); err != nil {
			return light.TrustedState{}, err
		}
		if err := verifyCommitFull(candidate.SignedHeader.Commit, candidate.ValidatorSet); err != nil {
			return light.TrustedState{}, err
		}
	}

	return light.TrustedState{
		Header:     newHeader,
		Validators: candidate.ValidatorSet,
	}, nil
}

// verifyCommitFull requires a full +2/3 majority of vals' voting power to
// have signed.
func verifyCommitFull(commit light.Commit, vals *light.ValidatorSet) error {
	needed := light.TrustThreshold{Numerator: 2, Denominator: 3}.FractionOf(vals.TotalPower) + 1
	got := signedPowerAgainst(commit, vals)
	if got < needed {
		return light.ErrInvalidCommit(fmt.Sprintf("got %d/%d voting power, need > 2/3", got, vals.TotalPower))
	}
	return nil
}

// verifyCommitTrusting requires at least threshold of oldVals' voting
// power to be present among the commit's signers. This is the skip check:
// InsufficientVotingPower is the only recoverable VerifierError, and it is
// returned here and nowhere else.
func verifyCommitTrusting(commit light.Commit, oldVals *light.ValidatorSet, threshold light.TrustThreshold) error {
	needed := threshold.FractionOf(oldVals.TotalPower)
	got := signedPowerAgainst(commit, oldVals)
	if got < needed {
		return light.ErrInsufficientVotingPower(got, needed)
	}
	return nil
}

// signedPowerAgainst sums, against vals, the voting power of every address
// that signed commit.
func signedPowerAgainst(commit light.Commit, vals *light.ValidatorSet) int64 {
	var total int64
	for _, addr := range commit.SignerAddresses {
		total += vals.VotingPowerOf(addr)
	}
	return total
}
