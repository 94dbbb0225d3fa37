// Package runlog records one JSONL entry per turn of an automated run,
// zstd-compressed so week-long soak sessions stay cheap on disk.
package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/RafeHatfield/yarl-sub007/internal/protocol"
)

// TurnLogEntry is the per-turn record. Digest is the world digest after
// the action was applied; replays verify against it.
type TurnLogEntry struct {
	RunID string `json:"run_id"`
	Depth int    `json:"depth"`
	Turn  uint64 `json:"turn"`

	State  string           `json:"state"`
	Action *protocol.Action `json:"action,omitempty"`

	X  int `json:"x"`
	Y  int `json:"y"`
	HP int `json:"hp"`

	StopReason string `json:"stop_reason,omitempty"`
	Digest     string `json:"digest"`
}

// Writer appends JSONL entries to a per-run .jsonl.zst file.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

func Path(baseDir, runID string) string {
	return filepath.Join(baseDir, fmt.Sprintf("run-%s.jsonl.zst", runID))
}

func NewWriter(baseDir, runID string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(Path(baseDir, runID), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

func (w *Writer) Write(entry TurnLogEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var first error
	if w.w != nil {
		if err := w.w.Flush(); err != nil {
			first = err
		}
		w.w = nil
	}
	if w.enc != nil {
		if err := w.enc.Close(); err != nil && first == nil {
			first = err
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err != nil && first == nil {
			first = err
		}
		w.f = nil
	}
	return first
}

// Read streams every entry of a run log into fn. It stops early when fn
// returns an error.
func Read(path string, fn func(TurnLogEntry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var entry TurnLogEntry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return sc.Err()
}
