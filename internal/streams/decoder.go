package streams

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	readBufferSize = 64 * 1024
	maxRecordSize  = 1024 * 1024
)

// generationRecord is one NDJSON chunk of the backend's streaming response.
type generationRecord struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// StreamDecoder turns the backend's NDJSON byte stream into complete
// sentences on a channel. Malformed lines are skipped explicitly; a single
// corrupted chunk never terminates the stream.
type StreamDecoder struct {
	segmenter *SentenceSegmenter
}

func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{segmenter: NewSentenceSegmenter()}
}

// Decode reads r to exhaustion (or until the backend's done marker, or ctx
// cancellation), forwarding each completed sentence to out in arrival order.
// The trailing partial sentence is flushed once at stream end. The caller
// owns both r and out. A transport failure mid-stream is returned after the
// flush so callers can tell a truncated stream from a complete one.
func (d *StreamDecoder) Decode(ctx context.Context, r io.Reader, out chan<- string) error {
	reader := bufio.NewReaderSize(r, readBufferSize)

	var readErr error
	for {
		line, err := readRecordLine(reader)
		if len(line) > 0 {
			var record generationRecord
			if jsonErr := json.Unmarshal(line, &record); jsonErr != nil {
				// Skip the corrupted chunk and keep reading.
				slog.Debug("[StreamDecoder] Skipping malformed record",
					slog.String("error", jsonErr.Error()))
			} else {
				for _, sentence := range d.segmenter.Feed(record.Response) {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case out <- sentence:
					}
				}
				if record.Done {
					break
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("[StreamDecoder] Transport ended abnormally",
					slog.String("error", err.Error()))
				readErr = fmt.Errorf("[StreamDecoder] transport ended abnormally: %w", err)
			}
			break
		}
	}

	if remainder, ok := d.segmenter.Flush(); ok {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- remainder:
		}
	}
	return readErr
}

// readRecordLine returns the next newline-delimited record. A line longer
// than maxRecordSize is discarded in place, returned as empty, and reading
// continues with the following line.
func readRecordLine(reader *bufio.Reader) ([]byte, error) {
	var line []byte
	discarding := false

	for {
		chunk, err := reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			if !discarding {
				line = append(line, chunk...)
				if len(line) > maxRecordSize {
					slog.Debug("[StreamDecoder] Discarding overlong record",
						slog.Int("limit", maxRecordSize))
					discarding = true
					line = nil
				}
			}
			continue
		}

		if !discarding {
			line = append(line, chunk...)
		}
		if err != nil {
			return bytes.TrimSuffix(line, []byte("\n")), err
		}
		if discarding {
			return nil, nil
		}
		return bytes.TrimSuffix(line, []byte("\n")), nil
	}
}
