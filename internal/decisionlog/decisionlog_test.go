package decisionlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-trade-advisor/internal/types"
)

func TestAppendWritesJSONLine(t *testing.T) {
	t.Setenv("ADVISOR_LOG_DIR", t.TempDir())

	report := &types.Report{
		Symbol:        "bitcoin",
		Action:        types.Buy,
		Confidence:    0.9,
		Price:         100,
		MovingAverage: 96,
		Levels:        &types.Levels{TakeProfit: 105, StopLoss: 98},
		Reason:        "trend=UP model=BUY(0.80)",
	}
	if err := Append(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Append(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(dailyFilepath(time.Now()))
	if err != nil {
		t.Fatalf("daily file missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 appended lines, got %d", len(lines))
	}

	var e Entry
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if e.Symbol != "bitcoin" || e.Action != "BUY" || e.Confidence != 0.9 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.TakeProfit != 105 || e.StopLoss != 98 {
		t.Fatalf("levels not recorded: %+v", e)
	}
}

func TestAppendHoldOmitsLevels(t *testing.T) {
	t.Setenv("ADVISOR_LOG_DIR", t.TempDir())

	report := &types.Report{Symbol: "bitcoin", Action: types.Hold, Confidence: 0.4, Price: 100}
	if err := Append(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(dailyFilepath(time.Now()))
	if err != nil {
		t.Fatalf("daily file missing: %v", err)
	}
	if strings.Contains(string(b), "take_profit") {
		t.Fatalf("HOLD entry must omit levels: %s", b)
	}
}

func TestCompressOlderSweepsOnlyDecisions(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADVISOR_LOG_DIR", dir)

	decisionsDir := filepath.Join(dir, "decisions")
	if err := os.MkdirAll(decisionsDir, 0o755); err != nil {
		t.Fatal(err)
	}

	stale := filepath.Join(decisionsDir, "2020-01-01.txt")
	if err := os.WriteFile(stale, []byte(`{"symbol":"bitcoin"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	// a stale .txt outside decisions/ must survive untouched
	outside := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(outside, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(outside, old, old); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale decision file must be removed after compression")
	}
	if _, err := os.Stat(stale + ".gz"); err != nil {
		t.Errorf("gzipped decision file missing: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside decisions/ must not be touched: %v", err)
	}
	if _, err := os.Stat(outside + ".gz"); !os.IsNotExist(err) {
		t.Error("file outside decisions/ must not be compressed")
	}
}

func TestCompressOlderMissingDirIsNoop(t *testing.T) {
	t.Setenv("ADVISOR_LOG_DIR", filepath.Join(t.TempDir(), "never-created"))
	if err := CompressOlder(7); err != nil {
		t.Fatalf("missing dir must be a no-op: %v", err)
	}
}

func TestCompressOlderKeepsFreshFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADVISOR_LOG_DIR", dir)

	report := &types.Report{Symbol: "bitcoin", Action: types.Buy, Confidence: 0.9, Price: 100}
	if err := Append(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dailyFilepath(time.Now())); err != nil {
		t.Errorf("today's file must survive the sweep: %v", err)
	}
}
