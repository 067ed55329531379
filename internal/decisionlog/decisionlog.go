package decisionlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ai-trade-advisor/internal/types"
)

var mu sync.Mutex

// Entry is one appended decision line.
type Entry struct {
	Time          string  `json:"time"`
	Symbol        string  `json:"symbol"`
	Action        string  `json:"action"`
	Confidence    float64 `json:"confidence"`
	Price         float64 `json:"price"`
	MovingAverage float64 `json:"moving_average"`
	TakeProfit    float64 `json:"take_profit,omitempty"`
	StopLoss      float64 `json:"stop_loss,omitempty"`
	Degraded      bool    `json:"degraded,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

func logDir() string {
	if v := os.Getenv("ADVISOR_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), "decisions", t.UTC().Format("2006-01-02")+".txt")
}

// Append writes the report as one JSON line in today's decision file.
func Append(r *types.Report) error {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	e := Entry{
		Time:          now.Format("2006-01-02 15:04:05"),
		Symbol:        r.Symbol,
		Action:        string(r.Action),
		Confidence:    r.Confidence,
		Price:         r.Price,
		MovingAverage: r.MovingAverage,
		Degraded:      r.Degraded,
		Reason:        r.Reason,
	}
	if r.Levels != nil {
		e.TakeProfit = r.Levels.TakeProfit
		e.StopLoss = r.Levels.StopLoss
	}

	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips decision files older than retentionDays. Only the
// decisions subdirectory is swept; whatever else lives under the log dir
// is left alone.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	dir := filepath.Join(logDir(), "decisions")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			return os.Remove(p)
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
