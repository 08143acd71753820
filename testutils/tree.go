package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTree creates files under root. Keys are slash separated relative paths,
// values are file sizes in bytes. Returns root for convenience.
func WriteTree(t *testing.T, root string, files map[string]int) string {
	t.Helper()
	for rel, size := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		data := make([]byte, size)
		for i := range data {
			data[i] = byte('a' + i%26)
		}
		require.NoError(t, os.WriteFile(p, data, 0644))
	}
	return root
}

// WriteFile writes content to p, creating parent directories
func WriteFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}
