package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	light "github.com/informalsystems/go-light-scheduler/light"
)

func TestMemStoreGetMiss(t *testing.T) {
	s := NewMemStore()
	_, ok := s.Get(10)
	assert.False(t, ok)
}

func TestMemStoreSaveAndGet(t *testing.T) {
	s := NewMemStore()
	s.Save(trustedStateFixture(10))

	got, ok := s.Get(10)
	assert.True(t, ok)
	assert.Equal(t, light.Height(10), got.Header.Height)
}

func TestMemStoreSaveAllAndLatestHeight(t *testing.T) {
	s := NewMemStore()
	s.SaveAll([]light.TrustedState{trustedStateFixture(10), trustedStateFixture(30), trustedStateFixture(20)})

	latest, ok := s.LatestHeight()
	assert.True(t, ok)
	assert.Equal(t, light.Height(30), latest)

	_, ok = s.Get(20)
	assert.True(t, ok)
}

func TestMemStoreLatestHeightEmpty(t *testing.T) {
	s := NewMemStore()
	_, ok := s.LatestHeight()
	assert.False(t, ok)
}
