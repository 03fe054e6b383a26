package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	ioutils "github.com/norwind/bingwall/internal/io"
	"github.com/norwind/bingwall/internal/model"
)

// FileStore persists each record as one JSON document under
// <root>/<Country>/<date>.json.
//
// The write-once guarantee comes from O_EXCL file creation: the first
// writer of a key creates the file, every later writer sees EEXIST and
// reports a skip. No locking is needed beyond what the filesystem gives.
//
// Example layout:
//
//	data/
//	  Japan/
//	    2025-01-02.json
//	    2025-01-01.json
//	  China/
//	    2025-01-02.json
type FileStore struct {
	root   string
	pretty bool
}

// NewFileStore creates a file-backed store rooted at dir. When pretty is
// true, documents are written indented for human inspection.
func NewFileStore(dir string, pretty bool) *FileStore {
	return &FileStore{root: dir, pretty: pretty}
}

// recordPath maps a key to its document path. The directory segment is the
// market's display name, so the layout stays browsable.
func (s *FileStore) recordPath(key model.CollectionKey) (string, error) {
	m, ok := model.MarketByCode(key.Market)
	if !ok {
		return "", errors.Errorf("store: unknown market %q", key.Market)
	}
	return filepath.Join(s.root, m.Name, key.Date+".json"), nil
}

func (s *FileStore) Exists(ctx context.Context, key model.CollectionKey) (bool, error) {
	path, err := s.recordPath(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "store: stat record")
	}
	return true, nil
}

func (s *FileStore) WriteIfAbsent(ctx context.Context, wp *model.Wallpaper) (bool, error) {
	path, err := s.recordPath(wp.Key())
	if err != nil {
		return false, err
	}
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return false, errors.Wrap(err, "store: create market directory")
	}

	var data []byte
	if s.pretty {
		data, err = json.MarshalIndent(wp, "", "  ")
	} else {
		data, err = json.Marshal(wp)
	}
	if err != nil {
		return false, errors.Wrap(err, "store: encode record")
	}

	// O_EXCL makes the create atomic: exactly one concurrent writer of a
	// key wins, the rest get EEXIST.
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "store: create record")
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(path)
		return false, errors.Wrap(err, "store: write record")
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return false, errors.Wrap(err, "store: close record")
	}
	return true, nil
}

func (s *FileStore) Read(ctx context.Context, key model.CollectionKey) (*model.Wallpaper, error) {
	path, err := s.recordPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "store: read record")
	}
	var wp model.Wallpaper
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, errors.Wrapf(err, "store: decode record %s", key)
	}
	return &wp, nil
}

func (s *FileStore) ListByMarket(ctx context.Context, market model.MarketCode, page, pageSize int) ([]*model.Wallpaper, int64, error) {
	dates, err := s.marketDates(market)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(dates))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	if start >= len(dates) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(dates) {
		end = len(dates)
	}

	records, err := s.readDates(ctx, market, dates[start:end])
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *FileStore) ListLatest(ctx context.Context, market model.MarketCode, n int) ([]*model.Wallpaper, error) {
	if n <= 0 {
		return nil, nil
	}
	dates, err := s.marketDates(market)
	if err != nil {
		return nil, err
	}
	if n < len(dates) {
		dates = dates[:n]
	}
	return s.readDates(ctx, market, dates)
}

// marketDates lists a market's stored dates, newest first. A market with
// no directory yet simply has no records.
func (s *FileStore) marketDates(market model.MarketCode) ([]string, error) {
	m, ok := model.MarketByCode(market)
	if !ok {
		return nil, errors.Errorf("store: unknown market %q", market)
	}
	entries, err := os.ReadDir(filepath.Join(s.root, m.Name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "store: list market directory")
	}

	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".json"))
	}
	// DateLayout sorts lexicographically, so reverse order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (s *FileStore) readDates(ctx context.Context, market model.MarketCode, dates []string) ([]*model.Wallpaper, error) {
	records := make([]*model.Wallpaper, 0, len(dates))
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wp, err := s.Read(ctx, model.CollectionKey{Market: market, Date: date})
		if err != nil {
			return nil, err
		}
		records = append(records, wp)
	}
	return records, nil
}
