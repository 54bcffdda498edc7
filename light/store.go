package light

// TrustedStoreReader is the read-side contract the Scheduler consults at
// every recursion level, including pivots. A hit is treated as a terminal,
// successful verification for that height: the Scheduler does not
// re-verify it against the Verifier.
//
// This is safe only if the store's contents are themselves products of
// prior successful verifications (or a genesis anchor supplied by the
// application). The Scheduler never writes to the store; persisting
// outputs is the outer application's responsibility.
type TrustedStoreReader interface {
	// Get returns the trusted state at height, and whether one was found.
	Get(height Height) (TrustedState, bool)
}
