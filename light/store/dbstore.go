package store

import (
	"fmt"
	"regexp"
	"strconv"

	amino "github.com/tendermint/go-amino"
	dbm "github.com/tendermint/tm-db"

	light "github.com/informalsystems/go-light-scheduler/light"
	"github.com/informalsystems/go-light-scheduler/light/log"
)

// DBStore is a tendermint/tm-db-backed TrustedStoreReader/writer. It keys
// entries by chain ID and height, the same scheme
// coinexchain-tendermint/lite/providers/db/db.go uses for signed headers
// and validator sets, collapsed here into a single length-prefixed,
// amino-encoded TrustedState per key since the Scheduler only needs one
// record per height rather than separate header/validator-set rows.
//
// The number of heights retained can be bounded with SetLimit, after which
// older entries are garbage collected on every Save by deleteAfterN below.
type DBStore struct {
	chainID string
	db      dbm.DB
	cdc     *amino.Codec
	limit   int

	logger log.Logger
}

// NewDBStore returns a DBStore writing height-namespaced keys for chainID
// into db.
func NewDBStore(chainID string, db dbm.DB) *DBStore {
	return &DBStore{
		chainID: chainID,
		db:      db,
		cdc:     amino.NewCodec(),
		logger:  log.NewNopLogger(),
	}
}

// SetLogger sets the logger used for Save/Get diagnostics.
func (s *DBStore) SetLogger(logger log.Logger) *DBStore {
	s.logger = logger
	return s
}

// SetLimit limits the number of heights retained. 0 (the default) means
// unlimited.
func (s *DBStore) SetLimit(limit int) *DBStore {
	s.limit = limit
	return s
}

// Get implements light.TrustedStoreReader.
func (s *DBStore) Get(height light.Height) (light.TrustedState, bool) {
	bz, err := s.db.Get(trustedStateKey(s.chainID, height))
	if err != nil || bz == nil {
		return light.TrustedState{}, false
	}

	var ts light.TrustedState
	if err := s.cdc.UnmarshalBinaryLengthPrefixed(bz, &ts); err != nil {
		s.logger.Error("failed to unmarshal trusted state", "height", height, "err", err)
		return light.TrustedState{}, false
	}
	return ts, true
}

// Save persists ts, then garbage collects older heights if SetLimit was
// called.
func (s *DBStore) Save(ts light.TrustedState) error {
	s.logger.Info("saving trusted state", "height", ts.Header.Height)

	bz, err := s.cdc.MarshalBinaryLengthPrefixed(ts)
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(trustedStateKey(s.chainID, ts.Header.Height), bz); err != nil {
		return err
	}
	if err := batch.WriteSync(); err != nil {
		return err
	}

	if s.limit > 0 {
		return s.deleteAfterN(s.limit)
	}
	return nil
}

// deleteAfterN keeps only the {after} most recent heights, deleting the
// rest, mirroring coinexchain-tendermint/lite/providers/db/db.go's
// deleteAfterN.
func (s *DBStore) deleteAfterN(after int) error {
	itr, err := s.db.ReverseIterator(
		trustedStateKey(s.chainID, 1),
		append(trustedStateKey(s.chainID, 1<<62), byte(0x00)),
	)
	if err != nil {
		return err
	}
	defer itr.Close()

	seen := 0
	for ; itr.Valid(); itr.Next() {
		seen++
		if seen > after {
			if err := s.db.Delete(itr.Key()); err != nil {
				return err
			}
		}
	}
	return nil
}

func trustedStateKey(chainID string, height light.Height) []byte {
	return []byte(fmt.Sprintf("%s/%010d/ts", chainID, height))
}

var keyPattern = regexp.MustCompile(`^([^/]+)/([0-9]+)/ts$`)

// parseTrustedStateKey extracts the chain ID and height encoded in key, for
// diagnostics and tests.
func parseTrustedStateKey(key []byte) (chainID string, height light.Height, ok bool) {
	m := keyPattern.FindSubmatch(key)
	if m == nil {
		return "", 0, false
	}
	h, err := strconv.ParseInt(string(m[2]), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return string(m[1]), h, true
}
