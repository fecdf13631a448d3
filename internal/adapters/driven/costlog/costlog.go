// Package costlog persists operation cost and audit records as JSONL
// files organized by date:
//
//	logs/YYYY-MM-DD/
//	├── audit/
//	│   └── api.jsonl        HTTP request records
//	└── gemini/
//	    ├── indexing.jsonl   per-page indexing (embedding + vision)
//	    ├── query.jsonl      grounded query costs
//	    ├── sync.jsonl       sync run summaries
//	    └── init.jsonl       init run summaries
//
// Files are append-only; each line carries a unique id and a UTC
// timestamp stamped at write time.
package costlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minsukim/notisync/internal/core/ports/driven"
)

// Interface checks.
var (
	_ driven.CostLogger  = (*Log)(nil)
	_ driven.CostScanner = (*Log)(nil)
)

// Log categories and file names.
const (
	categoryGemini = "gemini"
	categoryAudit  = "audit"
)

// Log writes and scans the JSONL cost logs under a base directory.
type Log struct {
	mu   sync.Mutex
	base string
	now  func() time.Time
}

// New creates a cost log rooted at baseDir (the "logs" directory itself).
func New(baseDir string) *Log {
	return &Log{base: baseDir, now: time.Now}
}

// envelope is the stamp added to every record.
type envelope struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

// LogIndexing appends a per-page indexing record.
func (l *Log) LogIndexing(rec driven.IndexingRecord) error {
	return l.append(categoryGemini, "indexing.jsonl", rec)
}

// LogSync appends a sync run summary record.
func (l *Log) LogSync(rec driven.SyncRecord) error {
	return l.append(categoryGemini, "sync.jsonl", rec)
}

// LogInit appends an init run summary record.
func (l *Log) LogInit(rec driven.InitRecord) error {
	return l.append(categoryGemini, "init.jsonl", rec)
}

// LogQuery appends a grounded query record.
func (l *Log) LogQuery(rec driven.QueryRecord) error {
	return l.append(categoryGemini, "query.jsonl", rec)
}

// LogAPI appends an HTTP audit record.
func (l *Log) LogAPI(rec driven.APIRecord) error {
	return l.append(categoryAudit, "api.jsonl", rec)
}

// append stamps the record and writes it as one JSON line under today's
// date directory.
func (l *Log) append(category, filename string, rec any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	line, err := stampedJSON(rec, envelope{
		ID:        uuid.NewString(),
		Timestamp: now.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	dir := filepath.Join(l.base, now.Format("2006-01-02"), category)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// stampedJSON merges the record's fields with the envelope into one JSON
// object.
func stampedJSON(rec any, env envelope) ([]byte, error) {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var merged map[string]any
	if err := json.Unmarshal(recJSON, &merged); err != nil {
		return nil, err
	}
	merged["id"] = env.ID
	merged["timestamp"] = env.Timestamp
	return json.Marshal(merged)
}

// Scan reads back every gemini cost record ever written, oldest date
// first. Malformed lines are skipped.
func (l *Log) Scan() ([]driven.CostEntry, error) {
	dateDirs, err := os.ReadDir(l.base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log base: %w", err)
	}

	names := make([]string, 0, len(dateDirs))
	for _, d := range dateDirs {
		if d.IsDir() {
			names = append(names, d.Name())
		}
	}
	sort.Strings(names)

	var entries []driven.CostEntry
	for _, date := range names {
		geminiDir := filepath.Join(l.base, date, categoryGemini)
		files, err := os.ReadDir(geminiDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read log dir %s: %w", geminiDir, err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".jsonl") {
				continue
			}
			kind := strings.TrimSuffix(file.Name(), ".jsonl")
			fileEntries, err := scanFile(filepath.Join(geminiDir, file.Name()), kind)
			if err != nil {
				return nil, err
			}
			entries = append(entries, fileEntries...)
		}
	}
	return entries, nil
}

// scanFile parses one JSONL file into cost entries tagged with kind.
func scanFile(path, kind string) ([]driven.CostEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var entries []driven.CostEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry driven.CostEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entry.Kind = kind
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file %s: %w", path, err)
	}
	return entries, nil
}
