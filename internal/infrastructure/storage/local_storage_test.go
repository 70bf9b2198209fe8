package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	key := "c1/2024/10/a.xml"

	require.NoError(t, s.Save(ctx, key, strings.NewReader("<HDon/>")))
	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "<HDon/>", string(b))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Open(ctx, key)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoError(t, s.Delete(ctx, key), "borrar dos veces no falla")
}

func TestLocalStorage_ClaveFueraDeRaiz(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.Save(context.Background(), "../../etc/passwd", strings.NewReader("x")))
	_, err = s.Open(context.Background(), "../x")
	assert.Error(t, err)
}
