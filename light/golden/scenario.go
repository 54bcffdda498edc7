package golden

import (
	"encoding/hex"
	"fmt"
	"time"

	light "github.com/informalsystems/go-light-scheduler/light"
)

// jsonValidatorSet is the wire form of a light.ValidatorSet: a hash plus
// the per-validator addresses and voting powers needed to let the
// reference Verifier compute overlap (see light/verify).
type jsonValidatorSet struct {
	Hash       string         `json:"hash"`
	Validators []jsonValidator `json:"validators"`
}

type jsonValidator struct {
	Address string `json:"address"`
	Power   int64  `json:"power"`
}

func (v jsonValidatorSet) build() (*light.ValidatorSet, error) {
	hash, err := decodeHash(v.Hash)
	if err != nil {
		return nil, fmt.Errorf("validator set hash: %w", err)
	}
	vals := make([]light.Validator, 0, len(v.Validators))
	for _, jv := range v.Validators {
		vals = append(vals, light.Validator{Address: jv.Address, VotingPower: jv.Power})
	}
	return light.NewValidatorSet(hash, vals), nil
}

// jsonHeader is the wire form of a light.Header.
type jsonHeader struct {
	Height               light.Height `json:"height"`
	BFTTime              time.Time    `json:"bft_time"`
	ValidatorSetHash     string       `json:"validator_set_hash"`
	NextValidatorSetHash string       `json:"next_validator_set_hash"`
	HeaderHash           string       `json:"header_hash"`
}

func (h jsonHeader) build() (light.Header, error) {
	valHash, err := decodeHash(h.ValidatorSetHash)
	if err != nil {
		return light.Header{}, fmt.Errorf("validator_set_hash: %w", err)
	}
	nextValHash, err := decodeHash(h.NextValidatorSetHash)
	if err != nil {
		return light.Header{}, fmt.Errorf("next_validator_set_hash: %w", err)
	}
	headerHash, err := decodeHash(h.HeaderHash)
	if err != nil {
		return light.Header{}, fmt.Errorf("header_hash: %w", err)
	}
	return light.Header{
		Height:               h.Height,
		BFTTime:              h.BFTTime,
		ValidatorSetHash:     valHash,
		NextValidatorSetHash: nextValHash,
		HeaderHash:           headerHash,
	}, nil
}

// jsonCommit is the wire form of a light.Commit.
type jsonCommit struct {
	HeaderHash string   `json:"header_hash"`
	Signers    []string `json:"signers"`
}

func (c jsonCommit) build(signed *light.ValidatorSet) (light.Commit, error) {
	headerHash, err := decodeHash(c.HeaderHash)
	if err != nil {
		return light.Commit{}, fmt.Errorf("commit header_hash: %w", err)
	}
	var power int64
	for _, addr := range c.Signers {
		power += signed.VotingPowerOf(addr)
	}
	return light.Commit{HeaderHash: headerHash, SignedPower: power, SignerAddresses: c.Signers}, nil
}

// jsonTrustedState is the wire form of a light.TrustedState.
type jsonTrustedState struct {
	Header     jsonHeader       `json:"header"`
	Validators jsonValidatorSet `json:"validators"`
}

func (t jsonTrustedState) build() (light.TrustedState, error) {
	header, err := t.Header.build()
	if err != nil {
		return light.TrustedState{}, err
	}
	vals, err := t.Validators.build()
	if err != nil {
		return light.TrustedState{}, err
	}
	return light.TrustedState{Header: header, Validators: vals}, nil
}

// jsonLightBlock is the wire form of a light.LightBlock.
type jsonLightBlock struct {
	Header           jsonHeader       `json:"header"`
	Commit           jsonCommit       `json:"commit"`
	Validators       jsonValidatorSet `json:"validators"`
	NextValidators   jsonValidatorSet `json:"next_validators"`
}

func (l jsonLightBlock) build() (light.LightBlock, error) {
	header, err := l.Header.build()
	if err != nil {
		return light.LightBlock{}, err
	}
	vals, err := l.Validators.build()
	if err != nil {
		return light.LightBlock{}, err
	}
	nextVals, err := l.NextValidators.build()
	if err != nil {
		return light.LightBlock{}, err
	}
	commit, err := l.Commit.build(vals)
	if err != nil {
		return light.LightBlock{}, err
	}
	return light.LightBlock{
		Height: header.Height,
		SignedHeader: light.SignedHeader{
			Header:         header,
			Commit:         commit,
			Validators:     vals,
			ValidatorsHash: vals.Hash(),
		},
		ValidatorSet:     vals,
		NextValidatorSet: nextVals,
	}, nil
}

// jsonVerificationOptions is the wire form of light.VerificationOptions.
type jsonVerificationOptions struct {
	TrustThreshold struct {
		Numerator   int64 `json:"numerator"`
		Denominator int64 `json:"denominator"`
	} `json:"trust_threshold"`
	TrustingPeriod string    `json:"trusting_period"`
	Now            time.Time `json:"now"`
}

func (o jsonVerificationOptions) build() (light.VerificationOptions, error) {
	period, err := time.ParseDuration(o.TrustingPeriod)
	if err != nil {
		return light.VerificationOptions{}, fmt.Errorf("trusting_period: %w", err)
	}
	return light.VerificationOptions{
		TrustThreshold: light.TrustThreshold{Numerator: o.TrustThreshold.Numerator, Denominator: o.TrustThreshold.Denominator},
		TrustingPeriod: period,
		Now:            o.Now,
	}, nil
}

// jsonVerifierResponse is a single scripted response to a QueryVerifier
// call, keyed by the anchor and candidate heights.
type jsonVerifierResponse struct {
	AnchorHeight light.Height `json:"anchor_height"`
	Height       light.Height `json:"height"`

	Result string `json:"result"` // "succeeded" | "failed"

	// Present when Result == "succeeded".
	TrustedState *jsonTrustedState `json:"trusted_state,omitempty"`

	// Present when Result == "failed".
	ErrorKind string `json:"error_kind,omitempty"`
	Detail    string `json:"detail,omitempty"`

	// Only meaningful when ErrorKind == "insufficient_voting_power".
	GotPower    int64 `json:"got_power,omitempty"`
	NeededPower int64 `json:"needed_power,omitempty"`
}

func (r jsonVerifierResponse) build() (light.VerifierResponse, error) {
	switch r.Result {
	case "succeeded":
		if r.TrustedState == nil {
			return light.VerifierResponse{}, fmt.Errorf("verifier response %q missing trusted_state", r.Result)
		}
		ts, err := r.TrustedState.build()
		if err != nil {
			return light.VerifierResponse{}, err
		}
		return light.VerificationSucceeded(ts), nil
	case "failed":
		err, buildErr := buildVerifierError(r.ErrorKind, r.Detail, r.GotPower, r.NeededPower)
		if buildErr != nil {
			return light.VerifierResponse{}, buildErr
		}
		return light.VerificationFailed(err), nil
	default:
		return light.VerifierResponse{}, fmt.Errorf("unknown verifier response result %q", r.Result)
	}
}

func buildVerifierError(kind, detail string, got, needed int64) (error, error) {
	switch kind {
	case "insufficient_voting_power":
		return light.ErrInsufficientVotingPower(got, needed), nil
	case "invalid_commit":
		return light.ErrInvalidCommit(detail), nil
	case "invalid_commit_value":
		return light.ErrInvalidCommitValue(detail), nil
	case "invalid_validator_set":
		return light.ErrInvalidValidatorSet(detail), nil
	case "invalid_next_validator_set":
		return light.ErrInvalidNextValidatorSet(detail), nil
	case "insufficient_validators_overlap":
		return light.ErrInsufficientValidatorsOverlap(detail), nil
	case "non_increasing_height":
		return light.ErrNonIncreasingHeight(0, 0), nil
	case "non_monotonic_bft_time":
		return light.ErrNonMonotonicBftTime(detail), nil
	case "not_within_trust_period":
		return light.ErrNotWithinTrustPeriod(detail), nil
	case "implementation_specific":
		return light.ErrImplementationSpecific(detail), nil
	default:
		return nil, fmt.Errorf("unknown verifier error kind %q", kind)
	}
}

// jsonFetchResponse is a single scripted response to a QueryRPC call.
type jsonFetchResponse struct {
	Height light.Height `json:"height"`

	Result string `json:"result"` // "fetched" | "failed"

	LightBlock *jsonLightBlock `json:"light_block,omitempty"`

	ErrorKind string `json:"error_kind,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func (r jsonFetchResponse) build() (light.RPCResponse, error) {
	switch r.Result {
	case "fetched":
		if r.LightBlock == nil {
			return light.RPCResponse{}, fmt.Errorf("fetch response %q missing light_block", r.Result)
		}
		lb, err := r.LightBlock.build()
		if err != nil {
			return light.RPCResponse{}, err
		}
		return light.FetchedLightBlock(lb), nil
	case "failed":
		switch r.ErrorKind {
		case "io":
			return light.FetchFailed(light.ErrFetchIO(r.Detail)), nil
		case "not_found":
			return light.FetchFailed(light.ErrFetchNotFound(r.Height)), nil
		case "cancelled":
			return light.FetchFailed(light.ErrFetchCancelled()), nil
		default:
			return light.RPCResponse{}, fmt.Errorf("unknown fetch error kind %q", r.ErrorKind)
		}
	default:
		return light.RPCResponse{}, fmt.Errorf("unknown fetch response result %q", r.Result)
	}
}

// jsonExpectedResult is the wire form of the expected Scheduler outcome.
type jsonExpectedResult struct {
	// Present on a successful scenario: heights of the expected chain, in
	// ascending order. Only heights are checked (not full TrustedState
	// equality), since the mock verifier responses are the source of truth
	// for the actual TrustedState contents.
	OkHeights []light.Height `json:"ok_heights,omitempty"`

	// Present on a failing scenario.
	Err *jsonExpectedError `json:"err,omitempty"`
}

type jsonExpectedError struct {
	Kind         string `json:"kind"` // "invalid_light_block" | "fetch_failed" | "height_overflow" | "invalid_input"
	VerifierKind string `json:"verifier_kind,omitempty"`
}

// Scenario is a single golden-file test case: a trusted anchor, a target
// light block, scripted mock responses, and the expected outcome.
type Scenario struct {
	InitialTrustedState  jsonTrustedState       `json:"initial_trusted_state"`
	TargetLightBlock     jsonLightBlock         `json:"target_light_block"`
	VerificationOptions  jsonVerificationOptions `json:"verification_options"`
	MockVerifierResponses []jsonVerifierResponse `json:"mock_verifier_responses"`
	MockFetcherResponses  []jsonFetchResponse    `json:"mock_fetcher_responses"`
	ExpectedResult        jsonExpectedResult     `json:"expected_result"`

	// ExpectedVerifierCalls/ExpectedFetchCalls, when present, assert exact
	// invocation counts, e.g. to confirm a store hit made zero calls.
	ExpectedVerifierCalls *int `json:"expected_verifier_calls,omitempty"`
	ExpectedFetchCalls    *int `json:"expected_fetch_calls,omitempty"`

	// StoredStates pre-populates the trusted store. When the store already
	// has a state at the target height, the Scheduler must return it
	// unchanged and issue zero Verifier/Fetcher calls.
	StoredStates []jsonTrustedState `json:"stored_states,omitempty"`
}

// Batch is a JSON document that expands into a named sequence of
// Scenarios, each run as its own subtest keyed by its map key.
type Batch struct {
	Cases map[string]Scenario `json:"cases"`
}

func decodeHash(s string) (light.Hash, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return light.Hash(b), nil
}
