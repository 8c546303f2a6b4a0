package llm

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const defaultChunkSize = 16

// Scripted replays fixed text as a token stream. It backs the offline provider
// and the tests of everything built on Generator.
type Scripted struct {
	Chunks []string
	// Err, when set, is returned after the last chunk instead of io.EOF.
	Err error
	// Delay is waited before every chunk.
	Delay time.Duration
}

// NewScripted splits text into chunks of at most chunkSize runes.
func NewScripted(text string, chunkSize int) *Scripted {
	return &Scripted{Chunks: SplitRunes(text, chunkSize)}
}

// LoadScript reads the replayed text from path.
func LoadScript(path string, chunkSize int) (*Scripted, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return NewScripted(string(content), chunkSize), nil
}

// SplitRunes cuts text into pieces of at most size runes without splitting a rune.
func SplitRunes(text string, size int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Stream replays the configured chunks.
func (scripted *Scripted) Stream(ctx context.Context, _ Prompt) (TokenStream, error) {
	return &scriptedStream{
		ctx:    ctx,
		chunks: append([]string(nil), scripted.Chunks...),
		err:    scripted.Err,
		delay:  scripted.Delay,
	}, nil
}

type scriptedStream struct {
	ctx      context.Context
	chunks   []string
	err      error
	delay    time.Duration
	position int

	mutex  sync.Mutex
	closed bool
}

func (stream *scriptedStream) Next() (string, error) {
	stream.mutex.Lock()
	closed := stream.closed
	stream.mutex.Unlock()
	if closed {
		return "", io.ErrClosedPipe
	}
	if stream.delay > 0 {
		timer := time.NewTimer(stream.delay)
		select {
		case <-stream.ctx.Done():
			timer.Stop()
			return "", stream.ctx.Err()
		case <-timer.C:
		}
	}
	if err := stream.ctx.Err(); err != nil {
		return "", err
	}
	if stream.position >= len(stream.chunks) {
		if stream.err != nil {
			return "", stream.err
		}
		return "", io.EOF
	}
	chunk := stream.chunks[stream.position]
	stream.position++
	return chunk, nil
}

func (stream *scriptedStream) Close() error {
	stream.mutex.Lock()
	defer stream.mutex.Unlock()
	stream.closed = true
	return nil
}

// Canned answers every completion with the same reply.
type Canned struct {
	Reply string
	Err   error
}

// Complete returns the canned reply.
func (canned Canned) Complete(ctx context.Context, _ Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if canned.Err != nil {
		return "", canned.Err
	}
	return canned.Reply, nil
}

var _ Generator = (*Scripted)(nil)
var _ Completer = Canned{}
