// Package device plays an audio bus through the system speaker.
package device

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

var errNotInitialized = errors.New("speaker not initialized")

// Speaker owns the process-wide speaker. Only one may be open at a time.
type Speaker struct {
	mu          sync.Mutex
	sampleRate  beep.SampleRate
	initialized bool
}

// speakerLock adapts the speaker lock to sync.Locker.
type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// New creates an unopened speaker.
func New() *Speaker {
	return &Speaker{}
}

// Init opens the speaker at sampleRate with a 1/30 s buffer.
func (s *Speaker) Init(sampleRate beep.SampleRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	s.sampleRate = sampleRate
	s.initialized = true
	return nil
}

// Locker returns the lock guarding everything the speaker streams from. Pass
// it to audio.NewBus.
func (s *Speaker) Locker() sync.Locker {
	return speakerLock{}
}

// SampleRate returns the rate the speaker was opened with.
func (s *Speaker) SampleRate() beep.SampleRate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleRate
}

// Play starts streaming st.
func (s *Speaker) Play(st beep.Streamer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	speaker.Play(st)
	return nil
}

// Close stops playback and releases the device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	s.initialized = false
}
