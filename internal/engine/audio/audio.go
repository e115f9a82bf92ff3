// Package audio plays the zone music and sound effects.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/project-tails/internal/config"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned when playing before Init succeeded.
var ErrNotInitialized = errors.New("audio not initialized")

// ErrUnknownEffect is returned when playing an effect that was never loaded.
var ErrUnknownEffect = errors.New("unknown sound effect")

// Manager handles audio playback for the game.
type Manager struct {
	mu  sync.RWMutex
	log *zap.Logger

	// State
	initialized bool
	sampleRate  beep.SampleRate

	// Music
	musicStreamer beep.StreamSeekCloser
	musicCtrl     *beep.Ctrl
	musicVolume   *effects.Volume
	musicName     string

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	musicVolLvl  float64
	sfxVolLvl    float64
	muted        bool

	// Decoded effects and the mixer playing them
	effects  map[string]*beep.Buffer
	sfxMixer *beep.Mixer
}

// New creates a manager with the configured volumes.
func New(cfg config.AudioConfig, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:          log,
		sampleRate:   DefaultSampleRate,
		masterVolume: clamp(cfg.MasterVolume, 0, 1),
		musicVolLvl:  clamp(cfg.MusicVolume, 0, 1),
		sfxVolLvl:    clamp(cfg.SFXVolume, 0, 1),
		muted:        cfg.Muted,
		effects:      make(map[string]*beep.Buffer),
		sfxMixer:     &beep.Mixer{},
	}
}

// Init opens the audio device.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30))
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	speaker.Play(m.sfxMixer)

	m.initialized = true
	m.log.Info("audio initialized", zap.Int("sample_rate", int(m.sampleRate)))
	return nil
}

// Close stops playback and releases the device.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	m.stopMusicInternal()
	speaker.Clear()
	speaker.Close()
	m.initialized = false
}

// IsInitialized returns whether the audio system is initialized.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
	m.updateMusicVolume()
}

// SetMusicVolume sets the music volume (0.0 to 1.0).
func (m *Manager) SetMusicVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.musicVolLvl = clamp(vol, 0, 1)
	m.updateMusicVolume()
}

// SetSFXVolume sets the effect volume (0.0 to 1.0).
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolLvl = clamp(vol, 0, 1)
}

// SetMuted silences all output without losing the volume settings.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
	m.updateMusicVolume()
}

// GetMasterVolume returns the master volume.
func (m *Manager) GetMasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// GetMusicVolume returns the music volume.
func (m *Manager) GetMusicVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.musicVolLvl
}

// GetSFXVolume returns the effect volume.
func (m *Manager) GetSFXVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sfxVolLvl
}

// Muted reports whether output is muted.
func (m *Manager) Muted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.muted
}

// effectiveVolume returns the output level for a channel level. Callers hold mu.
func (m *Manager) effectiveVolume(level float64) float64 {
	if m.muted {
		return 0
	}
	return m.masterVolume * level
}

func (m *Manager) updateMusicVolume() {
	if m.musicVolume == nil {
		return
	}
	vol := m.effectiveVolume(m.musicVolLvl)
	speaker.Lock()
	m.musicVolume.Silent = vol <= 0
	m.musicVolume.Volume = volumeExponent(vol)
	speaker.Unlock()
}

// volumeExponent converts a 0-1 level to the base 2 exponent used by
// effects.Volume: 1 is unchanged, 0.5 is one halving.
func volumeExponent(vol float64) float64 {
	if vol <= 0 {
		return -10
	}
	return math.Log2(vol)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LoadEffects decodes <dir>/<name>.wav for each name. Missing or broken files
// are logged and skipped. It returns the number of effects loaded.
func (m *Manager) LoadEffects(fsys fs.FS, dir string, names ...string) int {
	loaded := 0
	for _, name := range names {
		file := path.Join(dir, name+".wav")
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			m.log.Debug("sound effect not found", zap.String("file", file), zap.Error(err))
			continue
		}
		if err := m.LoadEffect(name, data); err != nil {
			m.log.Warn("sound effect skipped", zap.String("file", file), zap.Error(err))
			continue
		}
		loaded++
	}
	return loaded
}

// LoadEffect decodes WAV data into memory under name.
func (m *Manager) LoadEffect(name string, data []byte) error {
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return fmt.Errorf("read wav: %w", err)
	}

	m.mu.Lock()
	m.effects[name] = buf
	m.mu.Unlock()
	return nil
}

// HasEffect reports whether an effect is loaded.
func (m *Manager) HasEffect(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.effects[name]
	return ok
}

// PlayEffect plays a loaded effect once.
func (m *Manager) PlayEffect(name string) error {
	m.mu.RLock()
	initialized := m.initialized
	buf, ok := m.effects[name]
	vol := m.effectiveVolume(m.sfxVolLvl)
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEffect, name)
	}
	if !initialized {
		return ErrNotInitialized
	}
	if vol <= 0 {
		return nil
	}

	s := m.resample(buf.Format().SampleRate, buf.Streamer(0, buf.Len()))
	speaker.Lock()
	m.sfxMixer.Add(&effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   volumeExponent(vol),
	})
	speaker.Unlock()
	return nil
}

func (m *Manager) resample(from beep.SampleRate, s beep.Streamer) beep.Streamer {
	if from == m.sampleRate {
		return s
	}
	return beep.Resample(4, from, m.sampleRate, s)
}

// PlayMusic decodes WAV data and loops it until stopped, replacing the
// current track.
func (m *Manager) PlayMusic(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}

	m.stopMusicInternal()

	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}

	loop := &loopStreamer{streamer: streamer}
	m.musicCtrl = &beep.Ctrl{Streamer: m.resample(format.SampleRate, loop)}
	m.musicVolume = &effects.Volume{Streamer: m.musicCtrl, Base: 2}
	m.musicStreamer = streamer
	m.musicName = name
	m.updateMusicVolume()

	speaker.Play(m.musicVolume)
	m.log.Info("music started", zap.String("name", name))
	return nil
}

// StopMusic stops the current track.
func (m *Manager) StopMusic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopMusicInternal()
}

func (m *Manager) stopMusicInternal() {
	if m.musicCtrl == nil {
		return
	}
	speaker.Lock()
	m.musicCtrl.Streamer = nil
	speaker.Unlock()
	if m.musicStreamer != nil {
		m.musicStreamer.Close()
	}
	m.musicStreamer = nil
	m.musicCtrl = nil
	m.musicVolume = nil
	m.musicName = ""
}

// PauseMusic pauses the current track.
func (m *Manager) PauseMusic() {
	m.setPaused(true)
}

// ResumeMusic resumes a paused track.
func (m *Manager) ResumeMusic() {
	m.setPaused(false)
}

func (m *Manager) setPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.musicCtrl != nil {
		speaker.Lock()
		m.musicCtrl.Paused = paused
		speaker.Unlock()
	}
}

// MusicName returns the name of the current track, or "" when none plays.
func (m *Manager) MusicName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.musicName
}

// loopStreamer restarts its source whenever it runs out.
type loopStreamer struct {
	streamer beep.StreamSeeker
}

func (l *loopStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.streamer.Stream(samples[filled:])
		filled += n
		if !ok {
			if l.streamer.Len() == 0 {
				return filled, filled > 0
			}
			if err := l.streamer.Seek(0); err != nil {
				return filled, false
			}
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
