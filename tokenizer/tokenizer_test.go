package tokenizer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTokenizer struct {
	mu      sync.Mutex
	calls   int
	reloads int
}

func (c *countingTokenizer) Tokenize(text string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return strings.Join(strings.Split(text, ""), " ")
}

func (c *countingTokenizer) LoadUserDictionary(string) error { return c.ReloadUserDictionary() }

func (c *countingTokenizer) ReloadUserDictionary() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloads++
	return nil
}

func TestGseTokenize(t *testing.T) {
	g, err := NewGse("testdata/base_dict.txt", WithHMM(false))
	require.NoError(t, err)

	assert.Equal(t, "我们 想 吃 川菜", g.Tokenize("我们想吃川菜"))
	assert.Equal(t, "", g.Tokenize(""))
	assert.Equal(t, "", g.Tokenize("   "))
}

func TestGseUserDictionary(t *testing.T) {
	g, err := NewGse("testdata/base_dict.txt", WithHMM(false))
	require.NoError(t, err)
	assert.Equal(t, "围炉 煮茶", g.Tokenize("围炉煮茶"))

	require.NoError(t, g.LoadUserDictionary("testdata/user_dict.txt"))
	assert.Equal(t, "围炉煮茶", g.Tokenize("围炉煮茶"))

	require.Error(t, g.LoadUserDictionary("testdata/missing.txt"))
	assert.Equal(t, "围炉煮茶", g.Tokenize("围炉煮茶"), "failed load keeps previous dictionaries")
}

func TestGseReloadUserDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.txt")
	require.NoError(t, os.WriteFile(path, []byte("围炉煮茶 2000 n\n"), 0o644))

	g, err := NewGse("testdata/base_dict.txt", WithHMM(false), WithUserDictionary(path))
	require.NoError(t, err)
	assert.Equal(t, "围炉煮茶", g.Tokenize("围炉煮茶"))

	require.NoError(t, os.WriteFile(path, []byte("朋友聚会 2000 n\n"), 0o644))
	require.NoError(t, g.ReloadUserDictionary())

	assert.Equal(t, "围炉 煮茶", g.Tokenize("围炉煮茶"))
	assert.Equal(t, "朋友聚会", g.Tokenize("朋友聚会"))
}

func TestGseConcurrentLoadsKeepEveryDictionary(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "extra.txt")
	require.NoError(t, os.WriteFile(extra, []byte("朋友聚会 2000 n\n"), 0o644))

	g, err := NewGse("testdata/base_dict.txt", WithHMM(false))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, path := range []string{"testdata/user_dict.txt", extra} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.LoadUserDictionary(path))
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []string{"testdata/user_dict.txt", extra}, g.userDicts)
	assert.Equal(t, "围炉煮茶", g.Tokenize("围炉煮茶"))
	assert.Equal(t, "朋友聚会", g.Tokenize("朋友聚会"))
}

func TestCached(t *testing.T) {
	inner := &countingTokenizer{}
	c, err := NewCached(inner, 10)
	require.NoError(t, err)

	assert.Equal(t, "川 菜", c.Tokenize("川菜"))
	assert.Equal(t, "川 菜", c.Tokenize("川菜"))
	assert.Equal(t, 1, inner.calls)

	assert.Equal(t, "", c.Tokenize(""))
	assert.Equal(t, 1, inner.calls)

	require.NoError(t, c.ReloadUserDictionary())
	c.Tokenize("川菜")
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 1, inner.reloads)
}

func TestLazy(t *testing.T) {
	inner := &countingTokenizer{}
	builds := 0
	fail := true

	l := NewLazy(func() (Tokenizer, error) {
		builds++
		if fail {
			return nil, errors.New("dictionary not ready")
		}
		return inner, nil
	})

	assert.Equal(t, "川菜", l.Tokenize("川菜"), "raw text while unavailable")
	require.Error(t, l.ReloadUserDictionary())

	fail = false
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Tokenize("川菜")
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, builds)
	assert.Equal(t, 8, inner.calls)
	assert.Equal(t, "", l.Tokenize(""))
}
