package audio

import (
	"errors"
	"sync"
	"time"
)

// SampleSource produces mono int16 audio. Render fills buf and reports
// whether more audio follows; false means the source has finished.
type SampleSource interface {
	Render(buf []int16) bool
}

// Output interface for audio output implementations
type Output interface {
	Open(sampleRate, channels, bufferSize int) error
	Close() error
	Write(samples []int16) error
	IsPlaying() bool
}

// Player drives a SampleSource into an Output on a background loop.
type Player struct {
	source     SampleSource
	output     Output
	sampleRate int
	bufferSize int
	playing    bool
	paused     bool
	mu         sync.Mutex
	done       chan bool
}

// NewPlayer creates a new audio player
func NewPlayer(source SampleSource, output Output) *Player {
	return &Player{
		source: source,
		output: output,
		done:   make(chan bool),
	}
}

// Start starts audio playback
func (p *Player) Start(sampleRate, bufferSize int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return errors.New("already playing")
	}

	p.sampleRate = sampleRate
	p.bufferSize = bufferSize

	if err := p.output.Open(sampleRate, 1, bufferSize); err != nil {
		return err
	}

	p.playing = true
	go p.audioLoop()

	return nil
}

// Stop stops audio playback
func (p *Player) Stop() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.mu.Unlock()

	// Wait for audio loop to finish
	<-p.done

	p.output.Close()
}

// Pause pauses playback
func (p *Player) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume resumes playback
func (p *Player) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
}

// IsPaused returns true if paused
func (p *Player) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Wait blocks until playback finishes on its own, then closes the
// output. Use instead of Stop when playing a finite source to the end.
func (p *Player) Wait() {
	<-p.done
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	p.output.Close()
}

// audioLoop is the main audio processing loop. done is closed rather
// than sent on, so Stop and Wait can both observe the finish.
func (p *Player) audioLoop() {
	defer close(p.done)

	buffer := make([]int16, p.bufferSize)

	for {
		p.mu.Lock()
		if !p.playing {
			p.mu.Unlock()
			break
		}
		paused := p.paused
		p.mu.Unlock()

		more := true
		if paused {
			// Write silence when paused
			for i := range buffer {
				buffer[i] = 0
			}
		} else {
			more = p.source.Render(buffer)
		}

		if err := p.output.Write(buffer); err != nil {
			time.Sleep(10 * time.Millisecond)
		}

		if !more {
			p.mu.Lock()
			p.playing = false
			p.mu.Unlock()
			break
		}
	}
}

// BufferOutput is a simple buffer-based output for testing
type BufferOutput struct {
	buffer     []int16
	sampleRate int
	channels   int
	mu         sync.Mutex
}

// NewBufferOutput creates a new buffer output
func NewBufferOutput() *BufferOutput {
	return &BufferOutput{}
}

// Open opens the buffer output
func (b *BufferOutput) Open(sampleRate, channels, bufferSize int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sampleRate = sampleRate
	b.channels = channels
	b.buffer = make([]int16, 0, sampleRate*channels*10) // 10 seconds buffer
	return nil
}

// Close closes the buffer output
func (b *BufferOutput) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer = nil
	return nil
}

// Write writes samples to the buffer
func (b *BufferOutput) Write(samples []int16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buffer == nil {
		return errors.New("buffer not initialized")
	}

	b.buffer = append(b.buffer, samples...)
	return nil
}

// IsPlaying always returns true for buffer output
func (b *BufferOutput) IsPlaying() bool {
	return true
}

// GetBuffer returns the accumulated audio buffer
func (b *BufferOutput) GetBuffer() []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]int16, len(b.buffer))
	copy(result, b.buffer)
	return result
}

// Clear clears the buffer
func (b *BufferOutput) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer = b.buffer[:0]
}
