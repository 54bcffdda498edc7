package light

import (
	"math"
	"sort"

	"github.com/informalsystems/go-light-scheduler/light/log"
)

// Scheduler drives skipping verification with recursive bisection. Given a
// trusted anchor and a candidate light block far ahead of it, it either
// returns an ascending chain of TrustedStates ending at the candidate's
// height, or a fatal SchedulerError.
//
// A Scheduler is stateless across invocations except for its trusted-store
// reader; it holds no other mutable state, so concurrent Verify calls
// against the same Router are safe as long as the store's own storage
// provides its own read concurrency (see light/store).
type Scheduler struct {
	store  TrustedStoreReader
	logger log.Logger
}

// NewScheduler returns a Scheduler backed by store. A nil logger is
// replaced with a no-op logger.
func NewScheduler(store TrustedStoreReader, logger log.Logger) *Scheduler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Scheduler{store: store, logger: logger.With("module", "scheduler")}
}

// Verify performs skipping verification with recursive bisection: it tries
// to extend trust directly from trusted to target, and if the validator-set
// overlap between them is too thin to trust in one hop, it recurses on an
// intermediate height until every hop is individually verifiable.
//
// Postcondition on success: the returned slice is non-empty, strictly
// increasing by Header.Height, its last element has Header.Height ==
// target.Height, and every element was either already in the trusted store
// or accepted by the Verifier with anchor equal to its immediate
// predecessor in the chain (or trusted for the first element).
func (s *Scheduler) Verify(
	router Router,
	trusted TrustedState,
	target LightBlock,
	opts VerificationOptions,
) ([]TrustedState, error) {
	trustedHeight := trusted.Header.Height
	targetHeight := target.Height

	if trustedHeight >= targetHeight {
		return nil, ErrInvalidInput("trusted height must be strictly less than target height")
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	// Step 1: store shortcut.
	if ts, ok := s.store.Get(targetHeight); ok {
		s.logger.Debug("store shortcut", "height", targetHeight)
		return []TrustedState{ts}, nil
	}

	// Step 2: direct attempt.
	resp := router.QueryVerifier(VerifyLightBlockRequest{
		TrustedState: trusted,
		LightBlock:   target,
		Options:      opts,
	})
	if resp.Succeeded() {
		s.logger.Debug("direct verification succeeded", "height", targetHeight)
		return []TrustedState{resp.TrustedState}, nil
	}

	if !IsErrInsufficientVotingPower(resp.Err) {
		s.logger.Error("direct verification failed fatally", "height", targetHeight, "err", resp.Err)
		return nil, ErrInvalidLightBlock(resp.Err)
	}

	// Gap of 1: no pivot distinct from trustedHeight exists, so bisecting
	// further cannot help. An InsufficientVotingPower failure at this point
	// is therefore fatal rather than recoverable.
	if targetHeight-trustedHeight == 1 {
		s.logger.Error("adjacent header rejected for insufficient voting power", "height", targetHeight)
		return nil, ErrInvalidLightBlock(resp.Err)
	}

	s.logger.Debug("insufficient voting power, bisecting", "trusted_height", trustedHeight, "target_height", targetHeight)
	return s.bisect(router, trusted, target, opts)
}

func (s *Scheduler) bisect(
	router Router,
	trusted TrustedState,
	target LightBlock,
	opts VerificationOptions,
) ([]TrustedState, error) {
	trustedHeight := trusted.Header.Height
	targetHeight := target.Height

	pivotHeight, err := midpoint(trustedHeight, targetHeight)
	if err != nil {
		return nil, err
	}

	rpcResp := router.QueryRPC(FetchLightBlockRequest{Height: pivotHeight})
	if !rpcResp.Succeeded() {
		s.logger.Error("pivot fetch failed", "height", pivotHeight, "err", rpcResp.Err)
		return nil, ErrFetchFailed(rpcResp.Err)
	}

	s.logger.Debug("fetched pivot", "height", pivotHeight)

	left, err := s.Verify(router, trusted, rpcResp.LightBlock, opts)
	if err != nil {
		return nil, err
	}

	trustedMid := left[len(left)-1]

	right, err := s.Verify(router, trustedMid, target, opts)
	if err != nil {
		return nil, err
	}

	return mergeByHeight(left, right), nil
}

// midpoint computes floor((trustedHeight+targetHeight)/2) without
// overflowing: trustedHeight + (targetHeight-trustedHeight)/2 never exceeds
// targetHeight, whereas the additive form (trustedHeight+targetHeight)/2
// can overflow when both heights are large.
func midpoint(trustedHeight, targetHeight Height) (Height, error) {
	gap := targetHeight - trustedHeight
	if gap <= 0 || gap > math.MaxInt64-trustedHeight {
		return 0, ErrHeightOverflow()
	}
	return trustedHeight + gap/2, nil
}

// mergeByHeight merges two chains, each already sorted ascending by
// Header.Height with disjoint heights, into one sorted chain. Equivalent
// to concatenating and sorting, without the resort cost.
func mergeByHeight(left, right []TrustedState) []TrustedState {
	merged := make([]TrustedState, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if left[i].Header.Height <= right[j].Header.Height {
			merged = append(merged, left[i])
			i++
		} else {
			merged = append(merged, right[j])
			j++
		}
	}
	merged = append(merged, left[i:]...)
	merged = append(merged, right[j:]...)
	return merged
}

// IsAscendingByHeight reports whether states is strictly increasing by
// Header.Height, with no two elements sharing a height. Exported for use
// by callers (notably the golden-file harness) asserting the shape of a
// chain returned by Verify.
func IsAscendingByHeight(states []TrustedState) bool {
	return sort.SliceIsSorted(states, func(i, j int) bool {
		return states[i].Header.Height < states[j].Header.Height
	}) && noDuplicateHeights(states)
}

func noDuplicateHeights(states []TrustedState) bool {
	for i := 1; i < len(states); i++ {
		if states[i-1].Header.Height == states[i].Header.Height {
			return false
		}
	}
	return true
}
