package streams

import "strings"

const sentenceTerminator = '.'

// SentenceSegmenter reassembles complete sentences from arbitrarily
// fragmented text chunks. It keeps the trailing partial sentence between
// calls; after every Feed the buffer holds no terminator.
//
// Candidates that trim to nothing (adjacent terminators like "..") are
// suppressed rather than emitted as bare terminators.
type SentenceSegmenter struct {
	buffer string
}

func NewSentenceSegmenter() *SentenceSegmenter {
	return &SentenceSegmenter{}
}

// Feed appends fragment to the buffer and returns every sentence it
// completed, trimmed and re-terminated, in order.
func (s *SentenceSegmenter) Feed(fragment string) []string {
	if fragment == "" {
		return nil
	}
	s.buffer += fragment

	var sentences []string
	for {
		idx := strings.IndexByte(s.buffer, sentenceTerminator)
		if idx < 0 {
			break
		}
		candidate := strings.TrimSpace(s.buffer[:idx])
		s.buffer = s.buffer[idx+1:]
		if candidate == "" {
			continue
		}
		sentences = append(sentences, candidate+string(sentenceTerminator))
	}
	return sentences
}

// Flush returns the trimmed remainder, verbatim and without forcing a
// terminator, and clears the buffer. Called once at stream end.
func (s *SentenceSegmenter) Flush() (string, bool) {
	remainder := strings.TrimSpace(s.buffer)
	s.buffer = ""
	if remainder == "" {
		return "", false
	}
	return remainder, true
}
