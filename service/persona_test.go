package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPromptDefault(t *testing.T) {
	t.Setenv("PERSONA_PROMPT_FILE", "")
	p := &PersonaService{}
	prompt := p.SystemPrompt()
	assert.Contains(t, prompt, "Dr. Juan")
	assert.Contains(t, prompt, "Truque da Gelatina")
}

func TestSystemPromptFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.txt")
	require.NoError(t, os.WriteFile(path, []byte("Você é um atendente genérico."), 0644))
	t.Setenv("PERSONA_PROMPT_FILE", path)

	p := &PersonaService{}
	assert.Equal(t, "Você é um atendente genérico.", p.SystemPrompt())
}

func TestSystemPromptMissingFileFallsBack(t *testing.T) {
	t.Setenv("PERSONA_PROMPT_FILE", filepath.Join(t.TempDir(), "missing.txt"))
	p := &PersonaService{}
	assert.Contains(t, p.SystemPrompt(), "Dr. Juan")
}
