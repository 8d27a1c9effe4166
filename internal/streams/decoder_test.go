package streams

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, body string) []string {
	t.Helper()

	out := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		errCh <- NewStreamDecoder().Decode(context.Background(), strings.NewReader(body), out)
	}()

	var sentences []string
	for sentence := range out {
		sentences = append(sentences, sentence)
	}
	require.NoError(t, <-errCh)
	return sentences
}

func TestStreamDecoder_ReassemblesSentences(t *testing.T) {
	body := `{"response":"Good mo","done":false}
{"response":"od. Mixed vi","done":false}
{"response":"ews. Overall positive.","done":true}
`
	got := decodeAll(t, body)
	assert.Equal(t, []string{"Good mood.", "Mixed views.", "Overall positive."}, got)
}

func TestStreamDecoder_SkipsMalformedRecords(t *testing.T) {
	body := `{"response":"First part","done":false}
this is not json at all
{"broken":
{"response":" of it. Second one.","done":false}

{"done":true}
`
	got := decodeAll(t, body)
	assert.Equal(t, []string{"First part of it.", "Second one."}, got)
}

func TestStreamDecoder_FieldlessRecordsContributeNothing(t *testing.T) {
	body := `{"model":"mistral"}
{"response":"Only sentence.","done":false}
{"unrelated":42}
{"done":true}
`
	got := decodeAll(t, body)
	assert.Equal(t, []string{"Only sentence."}, got)
}

func TestStreamDecoder_FlushesTrailingPartial(t *testing.T) {
	body := `{"response":"Finished. Trailing words without terminator","done":true}
`
	got := decodeAll(t, body)
	assert.Equal(t, []string{"Finished.", "Trailing words without terminator"}, got)
}

func TestStreamDecoder_StopsAtDoneMarker(t *testing.T) {
	body := `{"response":"Before done.","done":true}
{"response":"After done.","done":false}
`
	got := decodeAll(t, body)
	assert.Equal(t, []string{"Before done."}, got)
}

func TestStreamDecoder_EmptyStream(t *testing.T) {
	got := decodeAll(t, "")
	assert.Empty(t, got)
}

func TestStreamDecoder_OverlongLineDoesNotAbortStream(t *testing.T) {
	// One line past the record-size cap is discarded; everything after it
	// must still be decoded.
	body := strings.Repeat("x", maxRecordSize+1) + "\n" +
		`{"response":"Still alive.","done":true}` + "\n"

	got := decodeAll(t, body)
	assert.Equal(t, []string{"Still alive."}, got)
}

func TestStreamDecoder_OverlongFinalLineStillFlushes(t *testing.T) {
	body := `{"response":"Before the noise.","done":false}` + "\n" +
		strings.Repeat("y", maxRecordSize+1)

	got := decodeAll(t, body)
	assert.Equal(t, []string{"Before the noise."}, got)
}

func TestStreamDecoder_SurfacesTransportFailure(t *testing.T) {
	errBoom := errors.New("connection reset")
	body := io.MultiReader(
		strings.NewReader(`{"response":"First part done.","done":false}`+"\n"),
		iotest.ErrReader(errBoom),
	)

	out := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		errCh <- NewStreamDecoder().Decode(context.Background(), body, out)
	}()

	var sentences []string
	for sentence := range out {
		sentences = append(sentences, sentence)
	}

	assert.Equal(t, []string{"First part done."}, sentences)
	assert.ErrorIs(t, <-errCh, errBoom)
}

func TestStreamDecoder_ContextCancellationStopsDecode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	body := `{"response":"One. Two. Three.","done":false}
`
	out := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		errCh <- NewStreamDecoder().Decode(ctx, strings.NewReader(body), out)
	}()

	// Take one sentence, then walk away like a disconnected client.
	select {
	case <-out:
	case <-time.After(time.Second):
		t.Fatal("expected a sentence before cancellation")
	}
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("decoder did not stop after cancellation")
	}
}
