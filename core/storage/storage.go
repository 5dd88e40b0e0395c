// Package storage persists chain exports in LevelDB. The in-memory chain
// stays authoritative; this is the durable form of the export snapshot.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"stakechain/core/block"
)

const (
	blockKeyPrefix = "block:"
	heightKeyFmt   = "height:%d"
	latestHashKey  = "latestBlockHash"
	snapshotKey    = "chainSnapshot"
)

type Store struct {
	db *leveldb.DB
}

func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBlock writes one block under its hash plus a height index entry,
// and advances the latest-hash pointer, atomically.
func (s *Store) SaveBlock(blk *block.Block) error {
	data, err := blk.Serialize()
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put([]byte(blockKeyPrefix+blk.Hash), data)
	batch.Put([]byte(fmt.Sprintf(heightKeyFmt, blk.Index)), []byte(blk.Hash))
	batch.Put([]byte(latestHashKey), []byte(blk.Hash))
	return s.db.Write(batch, nil)
}

// GetBlockByHash loads a persisted block by header hash.
func (s *Store) GetBlockByHash(hash string) (*block.Block, error) {
	data, err := s.db.Get([]byte(blockKeyPrefix+hash), nil)
	if err != nil {
		return nil, fmt.Errorf("block %s not found: %w", hash, err)
	}
	return block.Deserialize(data)
}

// GetBlockByHeight loads a persisted block through the height index.
func (s *Store) GetBlockByHeight(index uint64) (*block.Block, error) {
	hash, err := s.db.Get([]byte(fmt.Sprintf(heightKeyFmt, index)), nil)
	if err != nil {
		return nil, fmt.Errorf("no block persisted at height %d: %w", index, err)
	}
	return s.GetBlockByHash(string(hash))
}

// LatestBlock loads the most recently persisted block, or nil if the
// store is empty.
func (s *Store) LatestBlock() (*block.Block, error) {
	hash, err := s.db.Get([]byte(latestHashKey), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.GetBlockByHash(string(hash))
}

// SaveSnapshot persists an arbitrary serializable chain export.
func (s *Store) SaveSnapshot(snapshot any) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.db.Put([]byte(snapshotKey), data, nil)
}

// LoadSnapshot reads the persisted export into out. Returns false if no
// snapshot has been saved yet.
func (s *Store) LoadSnapshot(out any) (bool, error) {
	data, err := s.db.Get([]byte(snapshotKey), nil)
	if err == leveldb.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, out)
}
