package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/songbook/songcache/internal/datapath"
	"github.com/songbook/songcache/internal/record"
)

// NewStore 构建基于本地文件系统的缓存，整个进程复用一份实例。
func NewStore(opts Options) Store {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &fileStore{
		logger:   logger,
		compress: opts.Compress,
		locks:    make(map[string]*entryLock),
	}
}

// fileStore 通过 entryLock 避免同一进程内对同一条目的并发写入。
// 跨进程的并发写仍为 last-write-wins。
type fileStore struct {
	logger   logrus.FieldLogger
	compress bool

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func (s *fileStore) Locate(p datapath.Path) (string, error) {
	filePath, err := s.entryPath(p)
	if err != nil {
		return "", err
	}
	if err := ensureDir(filepath.Dir(filePath)); err != nil {
		return "", err
	}
	return filePath, nil
}

func (s *fileStore) Load(p datapath.Path) (*record.Record, record.Status) {
	if !p.HasBase() {
		return nil, record.StatusAbsent
	}

	fields := logrus.Fields{
		"action":  "cache_load",
		"datadir": p.Base,
		"subpath": p.Subpath,
	}

	filePath, err := s.Locate(p)
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Warn("cache_locate_failed")
		return nil, record.StatusCorrupt
	}
	fields["cache_file"] = filePath

	raw, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, record.StatusAbsent
		}
		s.logger.WithError(err).WithFields(fields).Warn("cache_read_failed")
		return nil, record.StatusCorrupt
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Warn("cache_decode_failed")
		return nil, record.StatusCorrupt
	}
	return rec, record.StatusValid
}

func (s *fileStore) Save(p datapath.Path, rec *record.Record) error {
	if !p.HasBase() {
		return ErrNoBase
	}
	if rec == nil {
		return errors.New("record is nil")
	}

	unlock := s.lockEntry(p)
	defer unlock()

	filePath, err := s.Locate(p)
	if err != nil {
		return err
	}

	payload, err := encodeRecord(rec, s.compress)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", p.Fullpath(), err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(filePath), ".songcache-*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(payload)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return fmt.Errorf("write cache file %s: %w", filePath, err)
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("replace cache file %s: %w", filePath, err)
	}
	return nil
}

func (s *fileStore) lockEntry(p datapath.Path) func() {
	key := entryKey(p)
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

// entryPath 计算 <abs(datadir)>/.cache/<subpath>，不触碰文件系统。
func (s *fileStore) entryPath(p datapath.Path) (string, error) {
	if !p.HasBase() {
		return "", ErrNoBase
	}

	root, err := filepath.Abs(filepath.Join(p.Base, DirName))
	if err != nil {
		return "", fmt.Errorf("resolve cache root: %w", err)
	}

	filePath := filepath.Join(root, p.Subpath)
	if !strings.HasPrefix(filePath, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, p.Subpath)
	}
	return filePath, nil
}

// ensureDir 创建目录；其他进程并发创建导致的“已存在”会被忽略。
func ensureDir(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
	}
	return fmt.Errorf("create cache directory %s: %w", dir, err)
}

func entryKey(p datapath.Path) string {
	return p.Base + "::" + p.Subpath
}
