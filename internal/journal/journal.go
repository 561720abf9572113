// Package journal appends one JSON line per analysis to a daily file.
package journal

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const ext = ".jsonl"

type Entry struct {
	Time       string `json:"time"`
	ID         string `json:"id"`
	Ticker     string `json:"ticker"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Action     string `json:"action,omitempty"`
	Model      string `json:"model,omitempty"`
	JobID      string `json:"job_id,omitempty"`
	JobStatus  string `json:"job_status,omitempty"`
	Failed     bool   `json:"failed"`
	Price      string `json:"price"`
	Headlines  int    `json:"headlines"`
	DurationMs int64  `json:"duration_ms"`
}

type Journal struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

var _ interfaces.Journal = (*Journal)(nil)

func New(dir string) *Journal {
	return &Journal{dir: dir, now: time.Now}
}

func (j *Journal) dailyFilepath(t time.Time) string {
	return filepath.Join(j.dir, t.Format("2006-01-02")+ext)
}

func entryFor(a *types.Analysis, now time.Time) Entry {
	e := Entry{
		Time:       now.Format(time.RFC3339),
		ID:         a.ID,
		Ticker:     a.Ticker,
		Status:     string(a.Status),
		Message:    a.Message,
		Price:      types.UnknownToken,
		Headlines:  len(a.Headlines),
		DurationMs: a.DurationMs,
	}
	if a.Snapshot != nil {
		e.Price = a.Snapshot.Price.String()
	}
	if r := a.Recommendation; r != nil {
		e.Action = r.Action
		e.Model = r.Model
		e.JobID = r.JobID
		e.JobStatus = string(r.Status)
		e.Failed = r.Failed
	}
	return e
}

// Append writes one line for a, whatever its status.
func (j *Journal) Append(a *types.Analysis) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	p := j.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(entryFor(a, now))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files last modified more than retentionDays ago.
// Today's file is never touched. A failure on one file does not stop the
// others; all failures are returned joined.
func (j *Journal) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	today := j.dailyFilepath(j.now())
	cutoff := j.now().AddDate(0, 0, -retentionDays)

	var errs []error
	walkErr := filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == j.dir {
				return filepath.SkipDir
			}
			errs = append(errs, err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(p, ext) || p == today {
			return nil
		}
		info, err := os.Stat(p)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		// already compressed by an earlier pass
		if _, err := os.Stat(gz); err == nil {
			if err := os.Remove(p); err != nil {
				errs = append(errs, err)
			}
			return nil
		}
		if err := compress(p, gz); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return errors.Join(errs...)
}

func compress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open journal file: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	gw := gzip.NewWriter(out)
	_, copyErr := io.Copy(gw, in)
	// close writer and file even on error
	closeErr := errors.Join(gw.Close(), out.Close())
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("compress %s: %w", src, err)
	}
	in.Close()
	return os.Remove(src)
}
