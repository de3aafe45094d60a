package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWordlist(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeWordlist(t, dir, "basics.yaml", `
- id: greeting-hello
  expression: hello
  meaning: a greeting
- expression: goodbye
  meaning: a farewell
`)
	writeWordlist(t, dir, "advanced.yml", `
- id: idiom-break-the-ice
  expression: break the ice
  meaning: to initiate social interaction
`)
	writeWordlist(t, dir, "notes.txt", "not a wordlist")

	words, err := Load(dir)
	require.NoError(t, err)

	var ids []string
	for _, word := range words {
		ids = append(ids, word.ID)
	}
	// Files load in sorted order; a missing id falls back to the expression.
	assert.Equal(t, []string{"idiom-break-the-ice", "greeting-hello", "goodbye"}, ids)
}

func TestLoad_DeduplicatesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeWordlist(t, dir, "a.yaml", `
- id: word-1
  expression: hello
  meaning: first definition
`)
	writeWordlist(t, dir, "b.yaml", `
- id: word-1
  expression: hello
  meaning: second definition
`)

	words, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "first definition", words[0].Meaning)
}

func TestLoad_MissingDirectory(t *testing.T) {
	words, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeWordlist(t, dir, "broken.yaml", "{not yaml")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestIDsAndByID(t *testing.T) {
	words := []Word{
		{ID: "word-1", Expression: "hello"},
		{ID: "word-2", Expression: "goodbye"},
	}

	assert.Equal(t, []string{"word-1", "word-2"}, IDs(words))

	byID := ByID(words)
	require.Contains(t, byID, "word-2")
	assert.Equal(t, "goodbye", byID["word-2"].Expression)
}
