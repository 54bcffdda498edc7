// Package mock provides a deterministic, slice-scripted Router test double,
// used by the Scheduler's own unit tests and by the golden-file harness in
// place of network calls. Responses are scripted ahead of time with
// OnVerify/OnFetch and matched by request key (anchor height and/or target
// height) rather than by call order, so scenarios can script calls in any
// sequence the Scheduler happens to make them.
package mock

import (
	"testing"

	"github.com/stretchr/testify/require"

	light "github.com/informalsystems/go-light-scheduler/light"
)

// verifierCall records one expected QueryVerifier invocation and the
// canned response to return for it.
type verifierCall struct {
	height   light.Height
	anchor   light.Height
	response light.VerifierResponse
	seen     bool
}

// fetchCall records one expected QueryRPC invocation and the canned
// response to return for it.
type fetchCall struct {
	height   light.Height
	response light.RPCResponse
	seen     bool
}

// Router is a Router test double whose QueryVerifier/QueryRPC responses
// are pre-scripted by height (and, for verifier calls, by anchor height
// too), so golden-file scenarios can describe each expected call as a
// request/response pair independent of the others.
type Router struct {
	t *testing.T

	verifierCalls []*verifierCall
	fetchCalls    []*fetchCall

	verifierInvocations int
	fetchInvocations    int
}

// NewRouter returns an empty Router double. t is used to fail the test
// loudly if an unscripted request arrives, rather than silently returning
// a zero value.
func NewRouter(t *testing.T) *Router {
	return &Router{t: t}
}

// OnVerify scripts the response to a QueryVerifier call whose trusted
// anchor is at anchorHeight and whose candidate light block is at height.
func (r *Router) OnVerify(anchorHeight, height light.Height, resp light.VerifierResponse) *Router {
	r.verifierCalls = append(r.verifierCalls, &verifierCall{anchor: anchorHeight, height: height, response: resp})
	return r
}

// OnFetch scripts the response to a QueryRPC call for height.
func (r *Router) OnFetch(height light.Height, resp light.RPCResponse) *Router {
	r.fetchCalls = append(r.fetchCalls, &fetchCall{height: height, response: resp})
	return r
}

// QueryVerifier implements light.Router.
func (r *Router) QueryVerifier(req light.VerifyLightBlockRequest) light.VerifierResponse {
	r.verifierInvocations++
	for _, c := range r.verifierCalls {
		if c.anchor == req.TrustedState.Header.Height && c.height == req.LightBlock.Height {
			c.seen = true
			return c.response
		}
	}
	require.Failf(r.t, "unscripted verifier call",
		"no mock response for anchor=%d height=%d", req.TrustedState.Header.Height, req.LightBlock.Height)
	return light.VerifierResponse{}
}

// QueryRPC implements light.Router.
func (r *Router) QueryRPC(req light.FetchLightBlockRequest) light.RPCResponse {
	r.fetchInvocations++
	for _, c := range r.fetchCalls {
		if c.height == req.Height {
			c.seen = true
			return c.response
		}
	}
	require.Failf(r.t, "unscripted fetch call", "no mock response for height=%d", req.Height)
	return light.RPCResponse{}
}

// VerifierInvocations returns how many times QueryVerifier was called.
func (r *Router) VerifierInvocations() int { return r.verifierInvocations }

// FetchInvocations returns how many times QueryRPC was called.
func (r *Router) FetchInvocations() int { return r.fetchInvocations }

// AssertAllScriptedCallsUsed fails the test if any scripted response was
// never consumed, catching scenarios whose fixtures drifted from what the
// Scheduler actually requests.
func (r *Router) AssertAllScriptedCallsUsed() {
	for _, c := range r.verifierCalls {
		require.True(r.t, c.seen, "scripted verifier response for anchor=%d height=%d was never used", c.anchor, c.height)
	}
	for _, c := range r.fetchCalls {
		require.True(r.t, c.seen, "scripted fetch response for height=%d was never used", c.height)
	}
}
