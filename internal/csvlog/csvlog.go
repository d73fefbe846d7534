package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/zap"
	"salon-agent/internal/logging"
)

// Appender writes header-led CSV rows to local log files. Appends to the
// same destination are serialized so concurrent calls cannot interleave or
// corrupt a row.
type Appender struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAppender() *Appender {
	return &Appender{locks: make(map[string]*sync.Mutex)}
}

// Append writes one row to the destination file, creating it with a header
// row first when it does not exist yet. The existence check and the write
// happen under the same per-file lock.
func (a *Appender) Append(path string, header, row []string) error {
	lock := a.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	_, statErr := os.Stat(path)
	writeHeader := errors.Is(statErr, fs.ErrNotExist)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open csv log %s: %w", path, err)
	}

	defer func() {
		cerr := file.Close()
		if cerr != nil {
			logging.Logger.Error("Failed to close csv log",
				zap.String("path", path),
				zap.String("error", cerr.Error()),
			)
		}
	}()

	writer := csv.NewWriter(file)

	if writeHeader {
		err = writer.Write(header)
		if err != nil {
			return fmt.Errorf("failed to write csv header to %s: %w", path, err)
		}
	}

	err = writer.Write(row)
	if err != nil {
		return fmt.Errorf("failed to write csv row to %s: %w", path, err)
	}

	writer.Flush()

	err = writer.Error()
	if err != nil {
		return fmt.Errorf("failed to flush csv log %s: %w", path, err)
	}

	return nil
}

func (a *Appender) fileLock(path string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[path] = lock
	}

	return lock
}
