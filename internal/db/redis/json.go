package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/shelfdex/internal/db"
)

// JSONSet stores a JSON document at the given key and path.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if err := s.do(ctx, s.jsonSetCmd(key, path, data)).Error(); err != nil {
		return wrapErr(db.OpJSONSet, err)
	}
	return nil
}

// JSONSetMulti stores all items in a single DoMulti round trip. Server replies
// are reported per item; a transport failure on any item fails the whole call
// because the fate of the remaining commands is unknown.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) ([]error, error) {
	if len(items) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmds[i] = s.jsonSetCmd(item.Key, item.Path, item.Data)
	}

	results := s.client.DoMulti(ctx, cmds...)
	if len(results) != len(items) {
		return nil, wrapErr(db.OpJSONSet, errResultCount)
	}

	errs := make([]error, len(items))
	for i, res := range results {
		err := res.Error()
		if err == nil {
			continue
		}
		if _, ok := rueidis.IsRedisErr(err); !ok {
			return nil, wrapErr(db.OpJSONSet, err)
		}
		errs[i] = &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return errs, nil
}

// JSONMerge applies an RFC 7396 merge patch at path. Null members delete fields.
func (s *Store) JSONMerge(ctx context.Context, key, path string, data []byte) error {
	cmd := s.b().Arbitrary("JSON.MERGE").Keys(key).Args(path, string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return wrapErr(db.OpJSONMerge, err)
	}
	return nil
}

// JSONGet retrieves a JSON document by key and optional paths.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(key).Args(paths...).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, wrapErr(db.OpJSONGet, err)
	}
	if raw == "" || raw == "[]" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}

// Del removes a key and reports whether it existed.
func (s *Store) Del(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Del().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, wrapErr(db.OpDel, err)
	}
	return n > 0, nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, wrapErr(db.OpExists, err)
	}
	return n > 0, nil
}

func (s *Store) jsonSetCmd(key, path string, data []byte) rueidis.Completed {
	return s.b().Arbitrary("JSON.SET").Keys(key).Args(path, string(data)).Build()
}
