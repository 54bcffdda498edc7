// Package fetch provides a reference HTTP-flavored Fetcher, grounded on
// coinexchain-tendermint/lite/providers/http.go's HTTP provider: wrap a
// minimal RPC client interface, classify its failures into the FetchError
// taxonomy, and assemble a LightBlock from the pieces the client returns.
//
// It is exercised by its own unit tests; the golden-file harness runs
// against the mock Router and does not use it. The Scheduler itself never
// imports this package; it only ever sees the light.Router interface.
package fetch

import (
	"context"
	"net"

	light "github.com/informalsystems/go-light-scheduler/light"
	"github.com/informalsystems/go-light-scheduler/light/log"
)

// SignStatusClient is the minimal client capability the Fetcher needs:
// enough to retrieve a signed header and the validator sets either side of
// it. Named after the SignStatusClient capability bundle
// coinexchain-tendermint/lite/providers/http.go composes from
// rpcclient.SignClient + rpcclient.StatusClient.
type SignStatusClient interface {
	SignedHeader(ctx context.Context, height light.Height) (light.SignedHeader, error)
	ValidatorSet(ctx context.Context, height light.Height) (*light.ValidatorSet, error)
}

// HTTPFetcher resolves heights into LightBlocks via a SignStatusClient.
type HTTPFetcher struct {
	chainID string
	client  SignStatusClient
	logger  log.Logger
}

// NewHTTPFetcher returns an HTTPFetcher for chainID backed by client.
func NewHTTPFetcher(chainID string, client SignStatusClient, logger log.Logger) *HTTPFetcher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &HTTPFetcher{chainID: chainID, client: client, logger: logger.With("module", "fetch")}
}

// LightBlock resolves height into a light.LightBlock, or a classified
// light.FetchError.
func (f *HTTPFetcher) LightBlock(ctx context.Context, height light.Height) (light.LightBlock, error) {
	if err := ctx.Err(); err != nil {
		return light.LightBlock{}, light.ErrFetchCancelled()
	}

	sh, err := f.client.SignedHeader(ctx, height)
	if err != nil {
		return light.LightBlock{}, classifyFetchErr(err, height)
	}

	valset, err := f.client.ValidatorSet(ctx, sh.Header.Height)
	if err != nil {
		return light.LightBlock{}, classifyFetchErr(err, sh.Header.Height)
	}

	nextValset, err := f.client.ValidatorSet(ctx, sh.Header.Height+1)
	if err != nil {
		return light.LightBlock{}, classifyFetchErr(err, sh.Header.Height+1)
	}

	f.logger.Debug("fetched light block", "height", sh.Header.Height)

	return light.LightBlock{
		Height:           sh.Header.Height,
		SignedHeader:     sh,
		ValidatorSet:     valset,
		NextValidatorSet: nextValset,
	}, nil
}

func classifyFetchErr(err error, height light.Height) error {
	if err == context.Canceled || err == context.DeadlineExceeded {
		return light.ErrFetchCancelled()
	}
	if _, ok := err.(net.Error); ok {
		return light.ErrFetchIO(err.Error())
	}
	if err == ErrNotFound {
		return light.ErrFetchNotFound(height)
	}
	return light.ErrFetchIO(err.Error())
}

// ErrNotFound is returned by a SignStatusClient implementation to indicate
// the remote has no data at the requested height; HTTPFetcher translates
// it into light.ErrFetchNotFound.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }
