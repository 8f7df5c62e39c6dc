package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB stores a scope as keys prefixed with the uvarint length of the scope
// name followed by the name, so several scopes can share one database directory
// and no scope prefix is a prefix of another.
type LevelDB struct {
	db     *leveldb.DB
	prefix []byte
}

// OpenLevelDB opens (or creates) the database at dir.
func OpenLevelDB(dir, scope string) (*LevelDB, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage path is required")
	}
	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(dir, &opt.Options{
		OpenFilesCacheCapacity: 16,
		BlockCacheCapacity:     4 * opt.MiB,
		WriteBuffer:            2 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if lerrors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb: %w", err)
	}
	return &LevelDB{db: db, prefix: scopePrefix(scope)}, nil
}

func scopePrefix(scope string) []byte {
	return append(binary.AppendUvarint(nil, uint64(len(scope))), scope...)
}

func (l *LevelDB) key(k string) []byte {
	return append(append([]byte{}, l.prefix...), k...)
}

func (l *LevelDB) Get(key string) (string, bool, error) {
	v, err := l.db.Get(l.key(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read leveldb: %w", err)
	}
	return string(v), true, nil
}

func (l *LevelDB) Set(key, value string) error {
	if err := l.db.Put(l.key(key), []byte(value), &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to write leveldb: %w", err)
	}
	return nil
}

func (l *LevelDB) Clear() error {
	iter := l.db.NewIterator(util.BytesPrefix(l.prefix), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte{}, iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("failed to scan leveldb: %w", err)
	}
	if err := l.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to clear leveldb: %w", err)
	}
	return nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
