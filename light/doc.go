/*
Package light implements the core of a light-client verification engine
for a Byzantine-fault-tolerant blockchain of the Tendermint family. It lets
a resource-constrained observer establish trust in an arbitrary block
header at some height, starting from a previously trusted header at a
lower height, without downloading every intervening header in between.

It does so via skipping verification with recursive bisection: the
Scheduler attempts to jump directly from the trusted anchor to the target
header, and if the validator-set overlap between the two is insufficient
to trust the jump directly, it recursively verifies an intermediate
height, halving the gap until every hop is individually verifiable.

Scheduler

Scheduler is the recursive bisection driver. It decides which heights to
request, dispatches to a Verifier through the Router, consults a trusted
store for shortcuts, and assembles the resulting ascending chain of
TrustedStates:

    type Router interface {
        QueryVerifier(VerifyLightBlockRequest) VerifierResponse
        QueryRPC(FetchLightBlockRequest) RPCResponse
    }

Callers provide a TrustedStoreReader. A store hit short-circuits
verification for that height entirely; this is safe only if the store's
contents are themselves products of prior successful verifications.

Errors

VerifierError, FetchError, and SchedulerError are closed taxonomies of
explicit kinds, each exposed as an ErrXxx constructor and an IsErrXxx
predicate (see errors.go). Only VerifierError's InsufficientVotingPower
kind is recoverable by the Scheduler, via bisection; every other kind is
fatal.

Subpackages

light/verify provides a reference, stateless Verifier.

light/fetch provides a reference HTTP-flavored Fetcher.

light/store provides an in-memory and a tm-db-backed TrustedStoreReader /
writer.

light/mock provides a deterministic, scripted Router test double whose
responses are matched by request key.

light/golden runs table-driven verification scenarios from JSON fixtures
against a mock Router.
*/
package light
