package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/mailtriage/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	// Skip if we can't determine home dir
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".mailtriage", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	// Load triggers lazy init
	prompt, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Contains(t, prompt, "STANDARD_FAQ")
	assert.Contains(t, prompt, "%s")

	path := filepath.Join(dir, driven.PromptClassify+".txt")
	_, err = os.Stat(path)
	assert.NoError(t, err, "expected default prompt file to be created")
}

func TestPromptStore_Load_PrefersUserFile(t *testing.T) {
	dir := t.TempDir()
	custom := "Sort this message into a bucket:\n\n%s"
	err := os.WriteFile(filepath.Join(dir, driven.PromptClassify+".txt"), []byte(custom), 0600)
	require.NoError(t, err)

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_UnknownName(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("no-such-prompt")
	assert.Error(t, err)
}

func TestPromptStore_Reload_PicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)

	updated := "New template:\n\n%s"
	err = os.WriteFile(filepath.Join(dir, driven.PromptClassify+".txt"), []byte(updated), 0600)
	require.NoError(t, err)

	// Cached value survives until Reload
	cached, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()

	fresh, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, updated, fresh)
}

func TestPromptStore_Load_Concurrent(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptClassify)
			assert.NoError(t, err)
			assert.NotEmpty(t, prompt)
		}()
	}
	wg.Wait()
}
