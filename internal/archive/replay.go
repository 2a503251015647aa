package archive

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"islandwar/internal/game"
)

// Journal accumulates replay events as they drain from the world and
// compresses them incrementally, one JSON line per event.
type Journal struct {
	buf bytes.Buffer
	zw  *zstd.Encoder
	n   int
}

func NewJournal() (*Journal, error) {
	j := &Journal{}
	zw, err := zstd.NewWriter(&j.buf)
	if err != nil {
		return nil, err
	}
	j.zw = zw
	return j, nil
}

// Append journals a batch of events, typically one tick's drain.
func (j *Journal) Append(events []game.ReplayEvent) error {
	for _, ev := range events {
		line, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := j.zw.Write(append(line, '\n')); err != nil {
			return err
		}
		j.n++
	}
	return nil
}

// Len reports how many events have been journaled.
func (j *Journal) Len() int { return j.n }

// Finish flushes the compressor and returns the replay blob. The journal is
// spent afterwards.
func (j *Journal) Finish() ([]byte, error) {
	if err := j.zw.Close(); err != nil {
		return nil, err
	}
	return j.buf.Bytes(), nil
}

// DecodeReplay expands a replay blob back into its event stream.
func DecodeReplay(blob []byte) ([]game.ReplayEvent, error) {
	zr, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer zr.Close()

	var events []game.ReplayEvent
	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		var ev game.ReplayEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("replay line %d: %w", len(events)+1, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
