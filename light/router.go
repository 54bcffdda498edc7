package light

// Router is the uniform dispatch surface the Scheduler is built against.
// It exists so the Scheduler is testable with deterministic in-memory
// mocks (see the light/mock package and the golden-file harness), rather
// than being wired directly to a network client.
type Router interface {
	// QueryVerifier dispatches a verification request and returns whether
	// the anchor extends trust to the candidate light block.
	QueryVerifier(req VerifyLightBlockRequest) VerifierResponse

	// QueryRPC dispatches a fetch request for a single height.
	QueryRPC(req FetchLightBlockRequest) RPCResponse
}

// VerifyLightBlockRequest asks whether TrustedState can be extended to
// trust LightBlock under Options.
type VerifyLightBlockRequest struct {
	TrustedState TrustedState
	LightBlock   LightBlock
	Options      VerificationOptions
}

// VerifierResponse is the tagged outcome of a verification request: either
// a new TrustedState, or a VerifierError (recoverable or fatal; see
// errors.go).
type VerifierResponse struct {
	TrustedState TrustedState
	Err          error
}

// Succeeded reports whether the verification succeeded.
func (r VerifierResponse) Succeeded() bool { return r.Err == nil }

// VerificationSucceeded builds a successful VerifierResponse.
func VerificationSucceeded(ts TrustedState) VerifierResponse {
	return VerifierResponse{TrustedState: ts}
}

// VerificationFailed builds a failed VerifierResponse carrying a
// VerifierError (see errors.go for the taxonomy).
func VerificationFailed(err error) VerifierResponse {
	return VerifierResponse{Err: err}
}

// FetchLightBlockRequest asks the Fetcher/RPC side of the Router to
// resolve a height into a LightBlock.
type FetchLightBlockRequest struct {
	Height Height
}

// RPCResponse is the tagged outcome of a fetch request: either a
// LightBlock, or a FetchError (see errors.go).
type RPCResponse struct {
	LightBlock LightBlock
	Err        error
}

// Succeeded reports whether the fetch succeeded.
func (r RPCResponse) Succeeded() bool { return r.Err == nil }

// FetchedLightBlock builds a successful RPCResponse.
func FetchedLightBlock(lb LightBlock) RPCResponse {
	return RPCResponse{LightBlock: lb}
}

// FetchFailed builds a failed RPCResponse carrying a FetchError.
func FetchFailed(err error) RPCResponse {
	return RPCResponse{Err: err}
}
