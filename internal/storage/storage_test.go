package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := NewLocalFs(fs)
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "blob", strings.NewReader("hello"), 5, "text/plain"))

	size, err := l.Stat(ctx, "blob")
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)

	rc, err := l.Open(ctx, "blob")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	exists, err := afero.Exists(fs, "blob.part")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, l.Delete(ctx, "blob"))

	_, err = l.Open(ctx, "blob")
	assert.ErrorIs(t, err, ErrNotExist)

	_, err = l.Stat(ctx, "blob")
	assert.ErrorIs(t, err, ErrNotExist)

	assert.ErrorIs(t, l.Delete(ctx, "blob"), ErrNotExist)
}

func TestLocalRejectsBadKeys(t *testing.T) {
	l := NewLocalFs(afero.NewMemMapFs())
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "../etc/passwd", `a\b`} {
		assert.ErrorIs(t, l.Put(ctx, key, strings.NewReader("x"), 1, ""), errBadKey, key)

		_, err := l.Open(ctx, key)
		assert.ErrorIs(t, err, errBadKey, key)
	}
}

func TestLocalConfinedToBasePath(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLocal(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, l.Put(ctx, "k", strings.NewReader("data"), 4, ""))

	exists, err := afero.Exists(afero.NewOsFs(), dir+"/k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIsMissing(t *testing.T) {
	assert.True(t, isMissing(fmt.Errorf("wrapped, %w", &types.NoSuchKey{})))
	assert.True(t, isMissing(&types.NotFound{}))
	assert.True(t, isMissing(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isMissing(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isMissing(io.EOF))
}
