package ledger

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileStore is a JSON-lines ledger. Each record is written with a single
// append so a crash can at worst leave one truncated trailing line. OpenFile
// terminates such a line before appending, so it is skipped on its own.
type FileStore struct {
	path   string
	logger *log.Logger

	mu      sync.RWMutex
	file    *os.File
	records []Record
}

// OpenFile opens or creates the ledger at path and loads its records.
func OpenFile(path string, logger *log.Logger) (*FileStore, error) {
	logger = logger.WithPrefix("ledger")

	data, err := readLedger(path)
	if err != nil {
		return nil, err
	}
	records, skipped, err := decodeLines(data)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		logger.Warn("Skipped malformed ledger lines", "path", path, "skipped", skipped)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		if _, err := f.Write([]byte{'\n'}); err != nil {
			f.Close()
			return nil, fmt.Errorf("terminate ledger %s: %w", path, err)
		}
		logger.Warn("Terminated unfinished ledger line", "path", path)
	}

	logger.Debug("Ledger opened", "path", path, "records", len(records))
	return &FileStore{
		path:    path,
		logger:  logger,
		file:    f,
		records: records,
	}, nil
}

func readLedger(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	return data, nil
}

func decodeLines(data []byte) ([]Record, int, error) {
	var (
		records []Record
		skipped int
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan ledger: %w", err)
	}
	return records, skipped, nil
}

func encodeLine(rec Record) ([]byte, error) {
	line, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return append(line, '\n'), nil
}

// Append writes rec as one line and syncs it to disk.
func (s *FileStore) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := encodeLine(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ErrClosed
	}
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("append to ledger %s: %w", s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync ledger %s: %w", s.path, err)
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *FileStore) Recent(_ context.Context, n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.records, n), nil
}

func (s *FileStore) Scan(ctx context.Context, fn func(Record) error) error {
	s.mu.RLock()
	snapshot := s.records[:len(s.records):len(s.records)]
	s.mu.RUnlock()
	return scanSlice(ctx, snapshot, fn)
}

// Path returns the ledger file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
