package journal

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

type summaryRow struct {
	Ticker     string
	Analyses   int
	Success    int
	Warning    int
	Error      int
	Buy        int
	Sell       int
	Hold       int
	FailedJobs int
	TotalMs    int64
}

func (j *Journal) summaryPath(t time.Time) string {
	return filepath.Join(j.dir, "summary", t.Format("2006-01-02")+".csv")
}

// SummarizeDay aggregates the journal for t's date per ticker and writes a CSV.
// Returns "" with a nil error when nothing was journaled that day.
func (j *Journal) SummarizeDay(t time.Time) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	inPath := j.dailyFilepath(t)
	f, err := os.Open(inPath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	rows := map[string]*summaryRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		key := e.Ticker
		if key == "" {
			key = "-"
		}
		r := rows[key]
		if r == nil {
			r = &summaryRow{Ticker: key}
			rows[key] = r
		}
		r.Analyses++
		r.TotalMs += e.DurationMs
		switch e.Status {
		case "success":
			r.Success++
		case "warning":
			r.Warning++
		case "error":
			r.Error++
		}
		switch e.Action {
		case "BUY":
			r.Buy++
		case "SELL":
			r.Sell++
		case "HOLD":
			r.Hold++
		}
		if e.Failed {
			r.FailedJobs++
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := j.summaryPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"ticker", "analyses", "success", "warning", "error", "buy", "sell", "hold", "failed_jobs", "avg_duration_ms"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	var total summaryRow
	for _, k := range keys {
		r := rows[k]
		if err := w.Write(r.record()); err != nil {
			return "", err
		}
		total.Analyses += r.Analyses
		total.Success += r.Success
		total.Warning += r.Warning
		total.Error += r.Error
		total.Buy += r.Buy
		total.Sell += r.Sell
		total.Hold += r.Hold
		total.FailedJobs += r.FailedJobs
		total.TotalMs += r.TotalMs
	}
	total.Ticker = "TOTAL"
	if err := w.Write(total.record()); err != nil {
		return "", err
	}
	w.Flush()
	return outPath, w.Error()
}

func (r *summaryRow) record() []string {
	var avg int64
	if r.Analyses > 0 {
		avg = r.TotalMs / int64(r.Analyses)
	}
	return []string{
		r.Ticker,
		strconv.Itoa(r.Analyses),
		strconv.Itoa(r.Success),
		strconv.Itoa(r.Warning),
		strconv.Itoa(r.Error),
		strconv.Itoa(r.Buy),
		strconv.Itoa(r.Sell),
		strconv.Itoa(r.Hold),
		strconv.Itoa(r.FailedJobs),
		strconv.FormatInt(avg, 10),
	}
}

// SummarizeToday summarizes the current day's journal.
func (j *Journal) SummarizeToday() (string, error) { return j.SummarizeDay(j.now()) }
