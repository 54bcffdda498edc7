package light

import (
	"fmt"

	"github.com/pkg/errors"
)

// VerifierError errors are the closed taxonomy of ways a Verifier can
// refuse to extend trust from an anchor to a candidate light block. Only
// InsufficientVotingPower is recoverable by the Scheduler; every other
// kind is fatal and aborts the whole verify() call. Kinds are matched
// structurally with the IsErrXxx predicates below, never by string
// comparison.

type errInsufficientVotingPower struct {
	gotPower, neededPower int64
}

func (e errInsufficientVotingPower) Error() string {
	return fmt.Sprintf("insufficient voting power: got %d, needed %d", e.gotPower, e.neededPower)
}

// ErrInsufficientVotingPower indicates the skip gap is too wide to verify
// directly; the Scheduler treats this, and only this, as recoverable.
func ErrInsufficientVotingPower(gotPower, neededPower int64) error {
	return errors.WithStack(errInsufficientVotingPower{gotPower, neededPower})
}

// IsErrInsufficientVotingPower reports whether err is (or wraps) an
// insufficient-voting-power verifier error.
func IsErrInsufficientVotingPower(err error) bool {
	_, ok := errors.Cause(err).(errInsufficientVotingPower)
	return ok
}

type simpleVerifierError struct{ kind, detail string }

func (e simpleVerifierError) Error() string {
	if e.detail == "" {
		return e.kind
	}
	return fmt.Sprintf("%s: %s", e.kind, e.detail)
}

func newSimpleVerifierError(kind, detail string) error {
	return errors.WithStack(simpleVerifierError{kind: kind, detail: detail})
}

func isSimpleVerifierErrorKind(err error, kind string) bool {
	e, ok := errors.Cause(err).(simpleVerifierError)
	return ok && e.kind == kind
}

// ErrInvalidCommit indicates the commit's signatures do not validate
// against the validator set presented for the candidate height.
func ErrInvalidCommit(detail string) error { return newSimpleVerifierError("invalid commit", detail) }

// IsErrInvalidCommit reports whether err is an ErrInvalidCommit.
func IsErrInvalidCommit(err error) bool { return isSimpleVerifierErrorKind(err, "invalid commit") }

// ErrInvalidCommitValue indicates the commit attests to a different header
// hash than the one it was attached to.
func ErrInvalidCommitValue(detail string) error {
	return newSimpleVerifierError("invalid commit value", detail)
}

// IsErrInvalidCommitValue reports whether err is an ErrInvalidCommitValue.
func IsErrInvalidCommitValue(err error) bool {
	return isSimpleVerifierErrorKind(err, "invalid commit value")
}

// ErrInvalidValidatorSet indicates the validator set's hash does not match
// the header's validator_set_hash.
func ErrInvalidValidatorSet(detail string) error {
	return newSimpleVerifierError("invalid validator set", detail)
}

// IsErrInvalidValidatorSet reports whether err is an ErrInvalidValidatorSet.
func IsErrInvalidValidatorSet(err error) bool {
	return isSimpleVerifierErrorKind(err, "invalid validator set")
}

// ErrInvalidNextValidatorSet indicates the next validator set's hash does
// not match the header's next_validator_set_hash.
func ErrInvalidNextValidatorSet(detail string) error {
	return newSimpleVerifierError("invalid next validator set", detail)
}

// IsErrInvalidNextValidatorSet reports whether err is an
// ErrInvalidNextValidatorSet.
func IsErrInvalidNextValidatorSet(err error) bool {
	return isSimpleVerifierErrorKind(err, "invalid next validator set")
}

// ErrInsufficientValidatorsOverlap indicates that, even ignoring the skip
// threshold, too few validators overlap between the two sets to compare
// them meaningfully.
func ErrInsufficientValidatorsOverlap(detail string) error {
	return newSimpleVerifierError("insufficient validators overlap", detail)
}

// IsErrInsufficientValidatorsOverlap reports whether err is an
// ErrInsufficientValidatorsOverlap.
func IsErrInsufficientValidatorsOverlap(err error) bool {
	return isSimpleVerifierErrorKind(err, "insufficient validators overlap")
}

// ErrNonIncreasingHeight indicates the candidate height is not strictly
// greater than the anchor's height.
func ErrNonIncreasingHeight(got, expected Height) error {
	return newSimpleVerifierError("non-increasing height", fmt.Sprintf("got %d, expected > %d", got, expected))
}

// IsErrNonIncreasingHeight reports whether err is an ErrNonIncreasingHeight.
func IsErrNonIncreasingHeight(err error) bool {
	return isSimpleVerifierErrorKind(err, "non-increasing height")
}

// ErrNonMonotonicBftTime indicates the candidate header's BFT time does not
// strictly exceed the anchor's.
func ErrNonMonotonicBftTime(detail string) error {
	return newSimpleVerifierError("non-monotonic bft time", detail)
}

// IsErrNonMonotonicBftTime reports whether err is an ErrNonMonotonicBftTime.
func IsErrNonMonotonicBftTime(err error) bool {
	return isSimpleVerifierErrorKind(err, "non-monotonic bft time")
}

// ErrNotWithinTrustPeriod indicates the anchor header is too old to be
// used, per VerificationOptions.TrustingPeriod.
func ErrNotWithinTrustPeriod(detail string) error {
	return newSimpleVerifierError("not within trust period", detail)
}

// IsErrNotWithinTrustPeriod reports whether err is an ErrNotWithinTrustPeriod.
func IsErrNotWithinTrustPeriod(err error) bool {
	return isSimpleVerifierErrorKind(err, "not within trust period")
}

// ErrImplementationSpecific wraps a Verifier failure not otherwise
// classified, e.g. from a pluggable Verifier with extra checks.
func ErrImplementationSpecific(detail string) error {
	return newSimpleVerifierError("implementation specific", detail)
}

// IsErrImplementationSpecific reports whether err is an
// ErrImplementationSpecific.
func IsErrImplementationSpecific(err error) bool {
	return isSimpleVerifierErrorKind(err, "implementation specific")
}

// isFatalVerifierError reports whether err is a VerifierError kind other
// than InsufficientVotingPower, i.e. whether the Scheduler must abort
// rather than bisect.
func isFatalVerifierError(err error) bool {
	if err == nil {
		return false
	}
	if IsErrInsufficientVotingPower(err) {
		return false
	}
	switch errors.Cause(err).(type) {
	case simpleVerifierError:
		return true
	default:
		return false
	}
}

// FetchError is the closed taxonomy of ways a Fetcher can fail to return a
// light block for a requested height.

type simpleFetchError struct{ kind, detail string }

func (e simpleFetchError) Error() string {
	if e.detail == "" {
		return e.kind
	}
	return fmt.Sprintf("%s: %s", e.kind, e.detail)
}

// ErrFetchIO indicates a transport-level failure (connection refused, DNS,
// TLS, etc).
func ErrFetchIO(detail string) error {
	return errors.WithStack(simpleFetchError{kind: "io", detail: detail})
}

// IsErrFetchIO reports whether err is an ErrFetchIO.
func IsErrFetchIO(err error) bool {
	e, ok := errors.Cause(err).(simpleFetchError)
	return ok && e.kind == "io"
}

// ErrFetchNotFound indicates the remote has no block at the requested
// height.
func ErrFetchNotFound(height Height) error {
	return errors.WithStack(simpleFetchError{kind: "not found", detail: fmt.Sprintf("height %d", height)})
}

// IsErrFetchNotFound reports whether err is an ErrFetchNotFound.
func IsErrFetchNotFound(err error) bool {
	e, ok := errors.Cause(err).(simpleFetchError)
	return ok && e.kind == "not found"
}

// ErrFetchCancelled indicates the calling context was cancelled or timed
// out before the fetch completed.
func ErrFetchCancelled() error {
	return errors.WithStack(simpleFetchError{kind: "cancelled"})
}

// IsErrFetchCancelled reports whether err is an ErrFetchCancelled.
func IsErrFetchCancelled(err error) bool {
	e, ok := errors.Cause(err).(simpleFetchError)
	return ok && e.kind == "cancelled"
}

// SchedulerError is the closed taxonomy of fatal errors the Scheduler
// itself surfaces. Recoverable VerifierError kinds (InsufficientVotingPower)
// never reach this layer; they are consumed internally to trigger
// bisection.

type errInvalidLightBlock struct {
	cause error
}

func (e errInvalidLightBlock) Error() string {
	return fmt.Sprintf("invalid light block: %s", e.cause.Error())
}

// ErrInvalidLightBlock wraps a fatal VerifierError as a SchedulerError.
func ErrInvalidLightBlock(cause error) error {
	return errors.WithStack(errInvalidLightBlock{cause: cause})
}

// IsErrInvalidLightBlock reports whether err is an ErrInvalidLightBlock,
// returning the wrapped VerifierError when it is.
func IsErrInvalidLightBlock(err error) (error, bool) {
	e, ok := errors.Cause(err).(errInvalidLightBlock)
	if !ok {
		return nil, false
	}
	return e.cause, true
}

type errFetchFailed struct{ cause error }

func (e errFetchFailed) Error() string { return fmt.Sprintf("fetch failed: %s", e.cause.Error()) }

// ErrFetchFailed wraps a fatal FetchError as a SchedulerError.
func ErrFetchFailed(cause error) error {
	return errors.WithStack(errFetchFailed{cause: cause})
}

// IsErrFetchFailed reports whether err is an ErrFetchFailed, returning the
// wrapped FetchError when it is.
func IsErrFetchFailed(err error) (error, bool) {
	e, ok := errors.Cause(err).(errFetchFailed)
	if !ok {
		return nil, false
	}
	return e.cause, true
}

type errHeightOverflow struct{}

func (errHeightOverflow) Error() string { return "height overflow computing bisection pivot" }

// ErrHeightOverflow indicates the pivot computation would overflow.
func ErrHeightOverflow() error {
	return errors.WithStack(errHeightOverflow{})
}

// IsErrHeightOverflow reports whether err is an ErrHeightOverflow.
func IsErrHeightOverflow(err error) bool {
	_, ok := errors.Cause(err).(errHeightOverflow)
	return ok
}

type errInvalidInput struct{ detail string }

func (e errInvalidInput) Error() string { return fmt.Sprintf("invalid input: %s", e.detail) }

// ErrInvalidInput indicates the caller violated a precondition of Verify:
// the trusted height is not strictly below the target height, or the
// target LightBlock fails its own structural invariants.
func ErrInvalidInput(detail string) error {
	return errors.WithStack(errInvalidInput{detail: detail})
}

// IsErrInvalidInput reports whether err is an ErrInvalidInput.
func IsErrInvalidInput(err error) bool {
	_, ok := errors.Cause(err).(errInvalidInput)
	return ok
}
