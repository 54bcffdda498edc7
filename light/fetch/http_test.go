package fetch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	light "github.com/informalsystems/go-light-scheduler/light"
	"github.com/informalsystems/go-light-scheduler/light/fetch"
)

type stubClient struct {
	headers map[light.Height]light.SignedHeader
	valsets map[light.Height]*light.ValidatorSet
	err     error
}

func (c *stubClient) SignedHeader(_ context.Context, height light.Height) (light.SignedHeader, error) {
	if c.err != nil {
		return light.SignedHeader{}, c.err
	}
	sh, ok := c.headers[height]
	if !ok {
		return light.SignedHeader{}, fetch.ErrNotFound
	}
	return sh, nil
}

func (c *stubClient) ValidatorSet(_ context.Context, height light.Height) (*light.ValidatorSet, error) {
	if c.err != nil {
		return nil, c.err
	}
	vs, ok := c.valsets[height]
	if !ok {
		return nil, fetch.ErrNotFound
	}
	return vs, nil
}

func fixtureClient(height light.Height) *stubClient {
	vals := light.NewValidatorSet(light.Hash("vals"), []light.Validator{{Address: "v1", VotingPower: 10}})
	return &stubClient{
		headers: map[light.Height]light.SignedHeader{
			height: {
				Header: light.Header{
					Height:               height,
					BFTTime:              time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					ValidatorSetHash:     vals.Hash(),
					NextValidatorSetHash: vals.Hash(),
					HeaderHash:           light.Hash("header"),
				},
				Commit:         light.Commit{HeaderHash: light.Hash("header")},
				Validators:     vals,
				ValidatorsHash: vals.Hash(),
			},
		},
		valsets: map[light.Height]*light.ValidatorSet{
			height:     vals,
			height + 1: vals,
		},
	}
}

func TestHTTPFetcherLightBlockAssemblesAllThreeCalls(t *testing.T) {
	client := fixtureClient(10)
	f := fetch.NewHTTPFetcher("test-chain", client, nil)

	lb, err := f.LightBlock(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, light.Height(10), lb.Height)
	assert.NotNil(t, lb.ValidatorSet)
	assert.NotNil(t, lb.NextValidatorSet)
}

func TestHTTPFetcherClassifiesNotFound(t *testing.T) {
	client := fixtureClient(10)
	f := fetch.NewHTTPFetcher("test-chain", client, nil)

	_, err := f.LightBlock(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, light.IsErrFetchNotFound(err))
}

func TestHTTPFetcherClassifiesIOError(t *testing.T) {
	client := &stubClient{err: errors.New("connection reset by peer")}
	f := fetch.NewHTTPFetcher("test-chain", client, nil)

	_, err := f.LightBlock(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, light.IsErrFetchIO(err))
}

func TestHTTPFetcherRejectsCancelledContext(t *testing.T) {
	client := fixtureClient(10)
	f := fetch.NewHTTPFetcher("test-chain", client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.LightBlock(ctx, 10)
	require.Error(t, err)
	assert.True(t, light.IsErrFetchCancelled(err))
}
