package engine

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BookRecord is one cached analysis result for a position hash (§4.J).
type BookRecord struct {
	Depth     int8
	Score     Score
	Best      Move
	Timestamp time.Time
}

// BookStore is a disk-backed cache of prior search results, keyed by
// Zobrist hash. It is purely advisory: a miss or a stale hit never blocks
// or changes the outcome of a fresh search, only how quickly a caller can
// get a provisional move before depth 1 finishes.
type BookStore struct {
	db *badger.DB
}

// OpenBookStore opens (creating if absent) a badger store at dir.
func OpenBookStore(dir string) (*BookStore, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, &LoadFailure{Path: dir, Err: err}
	}
	return &BookStore{db: db}, nil
}

func (b *BookStore) Close() error { return b.db.Close() }

// Put records one completed search result, overwriting any existing entry
// for hash unconditionally (the caller only calls this after completing an
// iteration it already trusts more than whatever was cached).
func (b *BookStore) Put(hash uint64, rec BookRecord) error {
	buf := make([]byte, 8+1+2+4+8)
	binary.LittleEndian.PutUint64(buf[0:8], hash)
	buf[8] = byte(rec.Depth)
	binary.LittleEndian.PutUint16(buf[9:11], uint16(rec.Score))
	binary.LittleEndian.PutUint32(buf[11:15], uint32(rec.Best))
	binary.LittleEndian.PutUint64(buf[15:23], uint64(rec.Timestamp.Unix()))

	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, hash)

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf[8:])
	})
}

// Get looks up hash, returning (record, true) on a hit.
func (b *BookStore) Get(hash uint64) (BookRecord, bool) {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, hash)

	var rec BookRecord
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if len(val) < 15 {
			return fmt.Errorf("bookstore: short record for key %x", hash)
		}
		rec = BookRecord{
			Depth:     int8(val[0]),
			Score:     Score(binary.LittleEndian.Uint16(val[1:3])),
			Best:      Move(binary.LittleEndian.Uint32(val[3:7])),
			Timestamp: time.Unix(int64(binary.LittleEndian.Uint64(val[7:15])), 0),
		}
		found = true
		return nil
	})
	if err != nil {
		found = false
	}
	return rec, found
}

// SuggestRootMove consults the store for a usable provisional move at the
// given position, never touching search state. The coordinator logs the
// suggestion before the search starts; it is not sent as a "bestmove" and
// does not influence the search result.
func (b *BookStore) SuggestRootMove(hash uint64, minDepth int8) (Move, bool) {
	rec, ok := b.Get(hash)
	if !ok || rec.Depth < minDepth || isNullMove(rec.Best) {
		return NullMove, false
	}
	return rec.Best, true
}
