// Package persona resolves and switches between the two site personas.
package persona

import "sync"

// Mode is the active persona.
type Mode string

const (
	Professional Mode = "professional"
	DJ           Mode = "dj"
)

// Hash fragments that select a persona.
const (
	HashDJ   = "#dj"
	HashTech = "#tech"
)

// PreferenceKey names the persisted preference (a cookie on the site).
const PreferenceKey = "portfolio-mode"

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == Professional || m == DJ }

// Hash returns the fragment for m.
func (m Mode) Hash() string {
	if m == DJ {
		return HashDJ
	}
	return HashTech
}

// Other returns the opposite persona.
func (m Mode) Other() Mode {
	if m == DJ {
		return Professional
	}
	return DJ
}

// FromHash maps a fragment to a mode. ok is false for anything else.
func FromHash(hash string) (Mode, bool) {
	switch hash {
	case HashDJ:
		return DJ, true
	case HashTech:
		return Professional, true
	}
	return "", false
}

// Resolve picks the initial mode: the URL hash wins, then a valid stored
// preference, then Professional.
func Resolve(hash, stored string) Mode {
	if m, ok := FromHash(hash); ok {
		return m
	}
	if m := Mode(stored); m.Valid() {
		return m
	}
	return Professional
}

// PreferenceStore persists the chosen mode.
type PreferenceStore interface {
	Load() string
	Save(Mode)
}

// MemoryPreference is a PreferenceStore held in memory.
type MemoryPreference struct {
	mu    sync.Mutex
	value string
}

func (p *MemoryPreference) Load() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *MemoryPreference) Save(m Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = string(m)
}

// Switch holds the active mode and keeps the stored preference and the
// hash in step with it.
type Switch struct {
	mu    sync.RWMutex
	mode  Mode
	hash  string
	prefs PreferenceStore
}

// NewSwitch resolves the initial mode from hash and prefs and persists it.
func NewSwitch(hash string, prefs PreferenceStore) *Switch {
	if prefs == nil {
		prefs = &MemoryPreference{}
	}
	s := &Switch{prefs: prefs}
	s.apply(Resolve(hash, prefs.Load()))
	return s
}

func (s *Switch) apply(m Mode) {
	s.mode = m
	s.hash = m.Hash()
	s.prefs.Save(m)
}

func (s *Switch) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Hash returns the fragment matching the current mode.
func (s *Switch) Hash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hash
}

func (s *Switch) IsDJ() bool           { return s.Mode() == DJ }
func (s *Switch) IsProfessional() bool { return s.Mode() == Professional }

// Set switches to m. Invalid modes are ignored.
func (s *Switch) Set(m Mode) {
	if !m.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(m)
}

// Toggle flips the persona and returns the new mode.
func (s *Switch) Toggle() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(s.mode.Other())
	return s.mode
}

// HashChanged follows back/forward navigation and deep links. Unknown
// fragments leave the mode alone.
func (s *Switch) HashChanged(hash string) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := FromHash(hash); ok && m != s.mode {
		s.apply(m)
	}
	return s.mode
}
