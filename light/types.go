// Package light implements skipping verification with recursive bisection
// for a light client of a Tendermint-family BFT chain: given a trusted
// header and a candidate header far ahead of it, the Scheduler establishes
// a chain of trusted states connecting the two without requiring every
// intervening header.
package light

import (
	"bytes"
	"fmt"
	"time"
)

// Height identifies a block position. Heights are totally ordered and
// unbounded in principle; the type is int64 to match the wire height used
// throughout the Tendermint RPC and block header formats.
type Height = int64

// Hash is an opaque, fixed-width digest identifying a header or validator
// set. Two hashes are equal iff their bytes are equal.
type Hash []byte

// Equal reports whether h and other identify the same digest.
func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h, other)
}

func (h Hash) String() string {
	return fmt.Sprintf("%X", []byte(h))
}

// TrustThreshold is the fraction numerator/denominator of previously-trusted
// voting power that must sign a skipped header. 0 < numerator <= denominator.
type TrustThreshold struct {
	Numerator   int64
	Denominator int64
}

// DefaultTrustThreshold is the canonical 1/3 trust level.
var DefaultTrustThreshold = TrustThreshold{Numerator: 1, Denominator: 3}

// FractionOf returns the minimum signed voting power, out of totalPower,
// required to clear this threshold. Rounds up so that exactly meeting the
// fraction is sufficient and anything less is not.
func (t TrustThreshold) FractionOf(totalPower int64) int64 {
	if t.Denominator == 0 {
		return totalPower
	}
	num := totalPower * t.Numerator
	min := num / t.Denominator
	if num%t.Denominator != 0 {
		min++
	}
	return min
}

// Validator is a single member of a ValidatorSet.
type Validator struct {
	Address     string
	VotingPower int64
}

// ValidatorSet is the set of validators authoritative at some height,
// summarized by a canonical hash. Two sets with equal hash are treated as
// identical for verification purposes.
type ValidatorSet struct {
	ValSetHash Hash
	Validators []Validator
	TotalPower int64
}

// NewValidatorSet computes TotalPower from the given validators. The caller
// supplies the canonical hash; it is not recomputed here, since computing a
// validator set's canonical hash is the chain's concern, not the light
// client's.
func NewValidatorSet(hash Hash, vals []Validator) *ValidatorSet {
	var total int64
	for _, v := range vals {
		total += v.VotingPower
	}
	return &ValidatorSet{ValSetHash: hash, Validators: vals, TotalPower: total}
}

// Hash returns the canonical hash of the set.
func (vs *ValidatorSet) Hash() Hash {
	if vs == nil {
		return nil
	}
	return vs.ValSetHash
}

// VotingPowerOf returns the voting power of the validator at address, or 0
// if absent from the set.
func (vs *ValidatorSet) VotingPowerOf(address string) int64 {
	if vs == nil {
		return 0
	}
	for _, v := range vs.Validators {
		if v.Address == address {
			return v.VotingPower
		}
	}
	return 0
}

// Header is the minimal header data the Scheduler and Verifier need.
// Invariant: HeaderHash is a collision-resistant digest of the header's canonical
// form, supplied by the Fetcher; recomputing it is out of scope.
type Header struct {
	Height               Height
	BFTTime              time.Time
	ValidatorSetHash     Hash
	NextValidatorSetHash Hash
	HeaderHash           Hash
}

// Commit is the bundle of signatures attesting to a header. Invariant:
// HeaderHash must equal the header it commits.
type Commit struct {
	HeaderHash Hash

	// SignedPower is the voting power, computed against some ValidatorSet,
	// that signed this commit. The reference Verifier (light/verify) does
	// not read it; it recomputes signed power from SignerAddresses against
	// whichever validator set it is checking.
	SignedPower int64
	// SignerAddresses lists which validators signed this commit. The
	// reference Verifier sums their voting power against the candidate's
	// own validator set and, during a skip, against the *different* (older)
	// trusted validator set. Individual signatures are not modeled.
	SignerAddresses []string
}

// SignedHeader pairs a header with the commit attesting to it and the
// validator set that produced it.
//
// Invariants: Commit.HeaderHash == Header.HeaderHash and
// Validators.Hash() == Header.ValidatorSetHash == ValidatorsHash.
type SignedHeader struct {
	Header         Header
	Commit         Commit
	Validators     *ValidatorSet
	ValidatorsHash Hash
}

// LightBlock is a header, its commit, and both the validator set that
// signed it and the validator set that will sign the next header.
//
// Invariants:
//   Height == SignedHeader.Header.Height
//   ValidatorSet.Hash() == SignedHeader.Header.ValidatorSetHash
//   NextValidatorSet.Hash() == SignedHeader.Header.NextValidatorSetHash
type LightBlock struct {
	Height           Height
	SignedHeader     SignedHeader
	ValidatorSet     *ValidatorSet
	NextValidatorSet *ValidatorSet
}

// Validate checks the structural invariants relating a LightBlock's fields
// to each other (height and hash cross-references). It does not check
// signatures or voting power; that is the Verifier's job.
func (lb LightBlock) Validate() error {
	if lb.Height != lb.SignedHeader.Header.Height {
		return ErrInvalidInput("light block height does not match signed header height")
	}
	if lb.ValidatorSet == nil || !lb.ValidatorSet.Hash().Equal(lb.SignedHeader.Header.ValidatorSetHash) {
		return ErrInvalidInput("light block validator set hash mismatch")
	}
	if lb.NextValidatorSet == nil || !lb.NextValidatorSet.Hash().Equal(lb.SignedHeader.Header.NextValidatorSetHash) {
		return ErrInvalidInput("light block next validator set hash mismatch")
	}
	if !lb.SignedHeader.Commit.HeaderHash.Equal(lb.SignedHeader.Header.HeaderHash) {
		return ErrInvalidInput("commit header hash does not match header hash")
	}
	return nil
}

// TrustedState is an assertion that the observer trusts Header at
// Header.Height and that Validators is the verified validator set for that
// height.
type TrustedState struct {
	Header     Header
	Validators *ValidatorSet
}

// VerificationOptions governs how skips are accepted and how long a
// trusted header may be used as an anchor.
type VerificationOptions struct {
	TrustThreshold TrustThreshold
	TrustingPeriod time.Duration
	Now            time.Time
}

// WithinTrustingPeriod reports whether a header with the given bft time is
// still usable as an anchor under these options.
func (o VerificationOptions) WithinTrustingPeriod(bftTime time.Time) bool {
	return o.Now.Sub(bftTime) <= o.TrustingPeriod
}
