package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Key layout. Variable-length parts are preceded by their uvarint length, so
// no user's prefix is a prefix of another user's keys whatever bytes the IDs
// hold.
//
//	e <len><user> <len><subject> <seq:8>   edge record (JSON)
//	i <len><user> <identity>               seq of the edge with that identity
//	s <user>                               last assigned seq
//	u <user>                               user marker
const (
	prefixEdge     byte = 'e'
	prefixIdentity byte = 'i'
	prefixSeq      byte = 's'
	prefixUser     byte = 'u'
)

type BadgerOptions struct {
	Dir        string
	InMemory   bool
	SyncWrites bool
	Logger     *zap.Logger
}

// BadgerStore is the embedded, file-backed edge store. Edges survive restarts
// and come back in the order they were written.
type BadgerStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = bopts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	if opts.SyncWrites {
		bopts = bopts.WithSyncWrites(true)
	}
	if opts.Logger != nil {
		bopts = bopts.WithLogger(&badgerLogger{log: opts.Logger.Named("badger").Sugar()})
	} else {
		bopts = bopts.WithLogger(nil)
	}
	bopts = bopts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithBlockCacheSize(16 << 20).
		WithIndexCacheSize(8 << 20)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreInMemory opens a store that keeps nothing on disk. For tests.
func NewBadgerStoreInMemory() (*BadgerStore, error) {
	return NewBadgerStore(BadgerOptions{InMemory: true})
}

func appendSized(k []byte, s string) []byte {
	k = binary.AppendUvarint(k, uint64(len(s)))
	return append(k, s...)
}

func userPrefix(p byte, userID string) []byte {
	k := make([]byte, 0, 1+binary.MaxVarintLen64+len(userID))
	k = append(k, p)
	return appendSized(k, userID)
}

func edgeSubjectPrefix(userID, subjectKey string) []byte {
	return appendSized(userPrefix(prefixEdge, userID), subjectKey)
}

func edgeRecordKey(userID, subjectKey string, seq int64) []byte {
	k := edgeSubjectPrefix(userID, subjectKey)
	return binary.BigEndian.AppendUint64(k, uint64(seq))
}

func identityKey(userID, identity string) []byte {
	return append(userPrefix(prefixIdentity, userID), identity...)
}

func exactKey(p byte, userID string) []byte {
	return append([]byte{p}, userID...)
}

func (s *BadgerStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *BadgerStore) AddEdges(ctx context.Context, userID string, edges []domain.Edge) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if len(edges) == 0 {
		return 0, nil
	}

	added := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		added = 0
		seq, err := readSeq(txn, userID)
		if err != nil {
			return err
		}

		for _, e := range edges {
			idKey := identityKey(userID, e.IdentityKey())
			_, err := txn.Get(idKey)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			seq++
			e.UserID = userID
			e.Seq = seq
			if e.CreatedAt.IsZero() {
				e.CreatedAt = time.Now().UTC()
			}
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to encode edge: %w", err)
			}
			if err := txn.Set(edgeRecordKey(userID, e.Subject.Key, seq), data); err != nil {
				return err
			}
			if err := txn.Set(idKey, binary.BigEndian.AppendUint64(nil, uint64(seq))); err != nil {
				return err
			}
			added++
		}

		if added == 0 {
			return nil
		}
		if err := txn.Set(exactKey(prefixSeq, userID), binary.BigEndian.AppendUint64(nil, uint64(seq))); err != nil {
			return err
		}
		return txn.Set(exactKey(prefixUser, userID), []byte{})
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func readSeq(txn *badger.Txn, userID string) (int64, error) {
	item, err := txn.Get(exactKey(prefixSeq, userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var seq int64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt sequence for user %q", userID)
		}
		seq = int64(binary.BigEndian.Uint64(val))
		return nil
	})
	return seq, err
}

func (s *BadgerStore) scanEdges(prefix []byte) ([]domain.Edge, error) {
	var edges []domain.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e domain.Edge
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("failed to decode edge: %w", err)
			}
			edges = append(edges, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

func (s *BadgerStore) GetEdges(ctx context.Context, userID string, subjectKey string) ([]domain.Edge, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	// Keys under one subject sort by big-endian seq, i.e. insertion order.
	return s.scanEdges(edgeSubjectPrefix(userID, subjectKey))
}

func (s *BadgerStore) GetAllEdges(ctx context.Context, userID string) ([]domain.Edge, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	edges, err := s.scanEdges(userPrefix(prefixEdge, userID))
	if err != nil {
		return nil, err
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Seq < edges[j].Seq })
	return edges, nil
}

func (s *BadgerStore) HasEdge(ctx context.Context, userID string, e domain.Edge) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(identityKey(userID, e.IdentityKey()))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (s *BadgerStore) Reset(ctx context.Context, userID string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := userPrefix(prefixEdge, userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := s.db.DropPrefix(userPrefix(prefixEdge, userID), userPrefix(prefixIdentity, userID)); err != nil {
		return 0, fmt.Errorf("failed to drop user graph: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(exactKey(prefixSeq, userID)); err != nil {
			return err
		}
		return txn.Delete(exactKey(prefixUser, userID))
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *BadgerStore) ListUserIDs(ctx context.Context) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{prefixUser}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().KeyCopy(nil)[1:]))
		}
		return nil
	})
	return ids, err
}

func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// badgerLogger routes badger's printf-style logging into zap.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...any)   { l.log.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...any) { l.log.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...any)    { l.log.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...any)   { l.log.Debugf(format, args...) }
