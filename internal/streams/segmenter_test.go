package streams

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceSegmenter_SplitsAcrossFragments(t *testing.T) {
	s := NewSentenceSegmenter()

	// "Good mood. Mixed views. Overall positive." split at awkward points.
	var got []string
	for _, fragment := range []string{"Good mo", "od. Mixed vi", "ews. Overall positive."} {
		got = append(got, s.Feed(fragment)...)
	}
	if remainder, ok := s.Flush(); ok {
		got = append(got, remainder)
	}

	assert.Equal(t, []string{"Good mood.", "Mixed views.", "Overall positive."}, got)
}

func TestSentenceSegmenter_EmitsOneSentencePerTerminator(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      int
	}{
		{"single sentence in one fragment", []string{"All good here."}, 1},
		{"two sentences in one fragment", []string{"One. Two."}, 2},
		{"sentence split over many fragments", []string{"a", "b", "c", "."}, 1},
		{"no terminator at all", []string{"never ", "finished"}, 0},
		{"empty fragments produce nothing", []string{"", "", ""}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSentenceSegmenter()
			var emitted []string
			for _, fragment := range tt.fragments {
				emitted = append(emitted, s.Feed(fragment)...)
			}
			assert.Len(t, emitted, tt.want)
		})
	}
}

func TestSentenceSegmenter_FlushReturnsRemainderOnce(t *testing.T) {
	s := NewSentenceSegmenter()
	s.Feed("Done. And a trailing bit")

	remainder, ok := s.Flush()
	require.True(t, ok)
	assert.Equal(t, "And a trailing bit", remainder)

	_, ok = s.Flush()
	assert.False(t, ok)
}

func TestSentenceSegmenter_FlushEmptyBuffer(t *testing.T) {
	s := NewSentenceSegmenter()
	s.Feed("Complete sentence.")

	_, ok := s.Flush()
	assert.False(t, ok)
}

func TestSentenceSegmenter_SuppressesEmptyCandidates(t *testing.T) {
	s := NewSentenceSegmenter()

	got := s.Feed("Really..")
	assert.Equal(t, []string{"Really."}, got)

	got = s.Feed("... ")
	assert.Empty(t, got)

	_, ok := s.Flush()
	assert.False(t, ok)
}

func TestSentenceSegmenter_RoundTrip(t *testing.T) {
	// Concatenating the emitted sentences (minus the terminators the
	// segmenter re-appends) plus the flushed remainder must reconstruct the
	// input up to whitespace at split points.
	fragments := []string{"The mood is good", ". People seem upbeat. Some disagree", " though"}

	s := NewSentenceSegmenter()
	var pieces []string
	for _, fragment := range fragments {
		for _, sentence := range s.Feed(fragment) {
			pieces = append(pieces, strings.TrimSuffix(sentence, "."))
		}
	}
	if remainder, ok := s.Flush(); ok {
		pieces = append(pieces, remainder)
	}

	joined := strings.Join(pieces, " ")
	original := strings.Join(strings.Fields(strings.ReplaceAll(strings.Join(fragments, ""), ".", " ")), " ")
	assert.Equal(t, original, joined)
}

func TestSentenceSegmenter_NoTerminatorLeftInBuffer(t *testing.T) {
	s := NewSentenceSegmenter()
	s.Feed("one. two. thr")
	assert.NotContains(t, s.buffer, ".")
}
