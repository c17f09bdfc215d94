package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// The Oto context is process-global: creating more than one is an
// error, so outputs share a singleton and count their players.
var (
	globalOtoMutex sync.Mutex
	globalContext  *oto.Context
	globalPlayers  int
)

// StreamingOtoOutput plays samples through Oto v3 via an io.Pipe, so
// writers block on the audio clock instead of overrunning the device.
type StreamingOtoOutput struct {
	player     *oto.Player
	writer     *io.PipeWriter
	reader     *io.PipeReader
	sampleRate int
	channels   int
	mu         sync.Mutex
	closed     bool
	wg         sync.WaitGroup
}

// NewStreamingOtoOutput creates a new streaming Oto output
func NewStreamingOtoOutput() (*StreamingOtoOutput, error) {
	return &StreamingOtoOutput{}, nil
}

// Open opens the streaming audio output
func (s *StreamingOtoOutput) Open(sampleRate, channels, bufferSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		return fmt.Errorf("stream already open")
	}

	s.sampleRate = sampleRate
	s.channels = channels
	s.reader, s.writer = io.Pipe()

	globalOtoMutex.Lock()
	if globalContext == nil {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   time.Duration(bufferSize) * time.Second / time.Duration(sampleRate),
		}
		context, ready, err := oto.NewContext(op)
		if err != nil {
			globalOtoMutex.Unlock()
			return fmt.Errorf("failed to create oto context: %w", err)
		}
		<-ready
		globalContext = context
	}
	globalPlayers++
	context := globalContext
	globalOtoMutex.Unlock()

	s.player = context.NewPlayer(s.reader)
	s.closed = false

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.player.Play()
	}()

	return nil
}

// Close closes the streaming output
func (s *StreamingOtoOutput) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	// Close the writer first so the player sees EOF.
	if s.writer != nil {
		s.writer.Close()
		s.writer = nil
	}

	// Give the device buffer a moment to drain.
	time.Sleep(100 * time.Millisecond)

	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
	if s.reader != nil {
		s.reader.Close()
		s.reader = nil
	}

	globalOtoMutex.Lock()
	globalPlayers--
	// Keep the context alive for reuse.
	globalOtoMutex.Unlock()

	s.wg.Wait()
	return nil
}

// Write writes samples to the stream
func (s *StreamingOtoOutput) Write(samples []int16) error {
	s.mu.Lock()
	if s.closed || s.writer == nil {
		s.mu.Unlock()
		return fmt.Errorf("stream not open")
	}
	writer := s.writer
	s.mu.Unlock()

	bytes := make([]byte, len(samples)*2)
	for i, sample := range samples {
		bytes[i*2] = byte(sample)
		bytes[i*2+1] = byte(sample >> 8)
	}

	_, err := writer.Write(bytes)
	return err
}

// IsPlaying returns true if playing
func (s *StreamingOtoOutput) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.player != nil
}

// FallbackOutput uses time.Sleep for systems where audio doesn't work
type FallbackOutput struct {
	sampleRate int
	channels   int
	closed     bool
	mu         sync.Mutex
}

func NewFallbackOutput() (*FallbackOutput, error) {
	return &FallbackOutput{}, nil
}

func (f *FallbackOutput) Open(sampleRate, channels, bufferSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sampleRate = sampleRate
	f.channels = channels
	f.closed = false
	return nil
}

func (f *FallbackOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

func (f *FallbackOutput) Write(samples []int16) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return fmt.Errorf("output closed")
	}
	sampleRate := f.sampleRate
	f.mu.Unlock()

	// Pace writes in real time so callers behave like with a device.
	duration := time.Duration(len(samples)) * time.Second / time.Duration(sampleRate)
	time.Sleep(duration)
	return nil
}

func (f *FallbackOutput) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}
