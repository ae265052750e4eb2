package history

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexPutAndLookup(t *testing.T) {
	idx, err := OpenIndex(t.TempDir())
	require.NoError(t, err)
	defer idx.Close()

	_, found, err := idx.Lookup("https://e-hentai.org/g/1/1")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, idx.Put("https://e-hentai.org/g/1/1", "completed"))

	status, found, err := idx.Lookup("https://e-hentai.org/g/1/1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "completed", status)
}

func TestIndexDelete(t *testing.T) {
	idx, err := OpenIndex(t.TempDir())
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Put("https://nhentai.net/g/1", "completed"))
	require.NoError(t, idx.Delete("https://nhentai.net/g/1"))

	_, found, err := idx.Lookup("https://nhentai.net/g/1")
	require.NoError(t, err)
	require.False(t, found)
}
