package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessPattern_Matches(t *testing.T) {
	tests := []struct {
		name    string
		pattern ProcessPattern
		process string
		want    bool
	}{
		{"exact match", "obs", "obs", true},
		{"case insensitive", "OBS", "obs", true},
		{"exe suffix ignored on candidate", "obs", "obs.exe", true},
		{"exe suffix ignored on pattern", "obs.exe", "obs", true},
		{"prefix wildcard", "r5apex*", "r5apex_dx12.exe", true},
		{"wildcard needs prefix", "r5apex*", "apex_r5", false},
		{"alternative matches", "obs64|obs", "obs64", true},
		{"second alternative matches", "obs64|obs", "obs.exe", true},
		{"no alternative matches", "obs64|obs", "voicemeeter", false},
		{"empty candidate", "obs", "", false},
		{"whitespace around alternatives", " obs64 | obs ", "obs64", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.Matches(tt.process))
		})
	}
}

func TestProcessPattern_IsEmpty(t *testing.T) {
	assert.True(t, ProcessPattern("").IsEmpty())
	assert.True(t, ProcessPattern("   ").IsEmpty())
	assert.False(t, ProcessPattern("obs").IsEmpty())
}

func TestProcessPattern_Alternatives(t *testing.T) {
	assert.Nil(t, ProcessPattern("").Alternatives())
	assert.Equal(t, []string{"obs64", "obs"}, ProcessPattern("obs64| obs |").Alternatives())
}

func TestGameDefinition_IsManual(t *testing.T) {
	tracked := GameDefinition{ID: "apex", ProcessPattern: "r5apex*"}
	manual := GameDefinition{ID: "console"}

	assert.False(t, tracked.IsManual())
	assert.True(t, manual.IsManual())
}
