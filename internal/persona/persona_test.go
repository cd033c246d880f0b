package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		hash   string
		stored string
		want   Mode
	}{
		{"hash wins over stored", "#dj", "professional", DJ},
		{"tech hash", "#tech", "dj", Professional},
		{"stored when no hash", "", "dj", DJ},
		{"default", "", "", Professional},
		{"unknown hash falls through", "#about", "dj", DJ},
		{"invalid stored ignored", "", "vaporwave", Professional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.hash, tt.stored))
		})
	}
}

func TestSwitch_KeepsHashAndPreferenceInSync(t *testing.T) {
	prefs := &MemoryPreference{}
	prefs.Save(DJ)

	s := NewSwitch("", prefs)
	assert.Equal(t, DJ, s.Mode())
	assert.Equal(t, "#dj", s.Hash())

	assert.Equal(t, Professional, s.Toggle())
	assert.Equal(t, "#tech", s.Hash())
	assert.Equal(t, "professional", prefs.Load())

	assert.Equal(t, DJ, s.HashChanged("#dj"))
	assert.Equal(t, "dj", prefs.Load())

	assert.Equal(t, DJ, s.HashChanged("#contact"))

	s.Set("bogus")
	assert.True(t, s.IsDJ())
	s.Set(Professional)
	assert.True(t, s.IsProfessional())
	assert.Equal(t, "professional", prefs.Load())
}

func TestNewSwitch_PersistsResolvedMode(t *testing.T) {
	prefs := &MemoryPreference{}
	s := NewSwitch("#dj", prefs)
	assert.Equal(t, DJ, s.Mode())
	assert.Equal(t, "dj", prefs.Load())
}
