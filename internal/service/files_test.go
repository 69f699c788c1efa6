package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocsScenario(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	docs, err := e.files.CreateFolder(e.ctx, alice.ID, "Docs", nil)
	require.NoError(t, err)
	assert.True(t, docs.IsFolder)
	assert.Zero(t, docs.Size)

	uploaded, err := e.files.Upload(e.ctx, alice.ID, &docs.ID, []Upload{file("a.txt", "0123456789")})
	require.NoError(t, err)
	require.Len(t, uploaded, 1)
	assert.EqualValues(t, 10, uploaded[0].Size)
	assert.Equal(t, docs.ID, *uploaded[0].ParentID)
	assert.Contains(t, uploaded[0].MimeType, "text/plain")
	assert.EqualValues(t, 10, e.usedSpace(t, alice.ID))

	listed, err := e.files.List(e.ctx, alice.ID, &docs.ID, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "a.txt", listed[0].Name)

	blob, err := e.files.Download(e.ctx, alice.ID, uploaded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", blob.Name)
	assert.Equal(t, "0123456789", readBlob(t, blob))

	require.NoError(t, e.files.Delete(e.ctx, alice.ID, docs.ID))
	assert.Zero(t, e.usedSpace(t, alice.ID))

	root, err := e.files.List(e.ctx, alice.ID, nil, "")
	require.NoError(t, err)
	assert.Empty(t, root)
	assert.Zero(t, e.blobs.count())
}

func TestUsedSpaceMatchesFiles(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	a, err := e.files.CreateFolder(e.ctx, alice.ID, "A", nil)
	require.NoError(t, err)
	b, err := e.files.CreateFolder(e.ctx, alice.ID, "B", &a.ID)
	require.NoError(t, err)

	steps := []func() error{
		func() error { _, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("1", "aaaa"), file("2", "bb")}); return err },
		func() error { _, err := e.files.Upload(e.ctx, alice.ID, &a.ID, []Upload{file("3", "ccccc")}); return err },
		func() error { _, err := e.files.Upload(e.ctx, alice.ID, &b.ID, []Upload{file("4", "ddddddd")}); return err },
		func() error { return e.files.Delete(e.ctx, alice.ID, b.ID) },
		func() error { _, err := e.files.Upload(e.ctx, alice.ID, &a.ID, []Upload{file("5", "e")}); return err },
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		assert.Equal(t, e.sumOfSizes(t, alice.ID), e.usedSpace(t, alice.ID), "step %d", i)
	}

	assert.EqualValues(t, 12, e.usedSpace(t, alice.ID))
	assert.Equal(t, 4, e.blobs.count())
}

func TestDeleteRemovesExactlySubtree(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	a, err := e.files.CreateFolder(e.ctx, alice.ID, "A", nil)
	require.NoError(t, err)
	b, err := e.files.CreateFolder(e.ctx, alice.ID, "B", &a.ID)
	require.NoError(t, err)
	sibling, err := e.files.CreateFolder(e.ctx, alice.ID, "Sibling", nil)
	require.NoError(t, err)

	_, err = e.files.Upload(e.ctx, alice.ID, &b.ID, []Upload{file("deep.txt", "deep")})
	require.NoError(t, err)
	kept, err := e.files.Upload(e.ctx, alice.ID, &sibling.ID, []Upload{file("kept.txt", "kept")})
	require.NoError(t, err)

	require.NoError(t, e.files.Delete(e.ctx, alice.ID, a.ID))

	files, err := e.store.Files().ByUser(e.ctx, alice.ID)
	require.NoError(t, err)

	var ids []uint
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	assert.ElementsMatch(t, []uint{sibling.ID, kept[0].ID}, ids)
	assert.Equal(t, 1, e.blobs.count())
	assert.EqualValues(t, 4, e.usedSpace(t, alice.ID))
}

func TestUploadOverQuota(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	_, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a", string(make([]byte, 400)))})
	require.NoError(t, err)

	// 400 + 300 + 301 > 1000
	_, err = e.files.Upload(e.ctx, alice.ID, nil, []Upload{
		file("b", string(make([]byte, 300))),
		file("c", string(make([]byte, 301))),
	})
	assertKind(t, err, ErrQuotaExceeded)

	files, err := e.store.Files().ByUser(e.ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, 1, e.blobs.count())
	assert.EqualValues(t, 400, e.usedSpace(t, alice.ID))

	// Exactly filling the quota is fine
	_, err = e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("d", string(make([]byte, 300))), file("e", string(make([]byte, 300)))})
	require.NoError(t, err)
	assert.EqualValues(t, 1000, e.usedSpace(t, alice.ID))
}

func TestUploadValidation(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	_, err := e.files.Upload(e.ctx, alice.ID, nil, nil)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("big", string(make([]byte, 501)))})
	assertKind(t, err, ErrFileTooLarge)

	_, err = e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("../evil", "x")})
	assert.Equal(t, KindValidation, KindOf(err))

	missing := uint(9999)
	_, err = e.files.Upload(e.ctx, alice.ID, &missing, []Upload{file("a", "x")})
	assertKind(t, err, ErrParentNotFound)

	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a", "x")})
	require.NoError(t, err)

	_, err = e.files.Upload(e.ctx, alice.ID, &f[0].ID, []Upload{file("b", "x")})
	assertKind(t, err, ErrNotAFolder)

	assert.Equal(t, 1, e.blobs.count())
}

func TestUploadDetectsMime(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	png := "\x89PNG\r\n\x1a\n" + string(make([]byte, 32))
	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("image.bin", png)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", f[0].MimeType)

	blob, err := e.files.Download(e.ctx, alice.ID, f[0].ID)
	require.NoError(t, err)
	assert.Equal(t, png, readBlob(t, blob), "sniffed bytes are kept")
}

func TestCreateFolder(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")
	bob := e.user(t, "bob@example.com")

	docs, err := e.files.CreateFolder(e.ctx, alice.ID, "Docs", nil)
	require.NoError(t, err)

	_, err = e.files.CreateFolder(e.ctx, alice.ID, "Docs", nil)
	assertKind(t, err, ErrDuplicateName)

	// Same name is fine in another folder or for another user
	_, err = e.files.CreateFolder(e.ctx, alice.ID, "Docs", &docs.ID)
	assert.NoError(t, err)
	_, err = e.files.CreateFolder(e.ctx, bob.ID, "Docs", nil)
	assert.NoError(t, err)

	_, err = e.files.CreateFolder(e.ctx, bob.ID, "Mine", &docs.ID)
	assertKind(t, err, ErrForbidden)

	for _, name := range []string{"", "  ", "a/b", "..", "bad\x00name"} {
		_, err = e.files.CreateFolder(e.ctx, alice.ID, name, nil)
		assert.Equal(t, KindValidation, KindOf(err), name)
	}
}

func TestRename(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")
	bob := e.user(t, "bob@example.com")

	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a.txt", "x")})
	require.NoError(t, err)

	_, err = e.files.Rename(e.ctx, bob.ID, f[0].ID, "stolen.txt")
	assertKind(t, err, ErrForbidden)

	got, err := e.store.Files().ByID(e.ctx, f[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.Name)

	renamed, err := e.files.Rename(e.ctx, alice.ID, f[0].ID, "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", renamed.Name)

	_, err = e.files.Rename(e.ctx, alice.ID, 9999, "c.txt")
	assertKind(t, err, ErrNotFound)

	x, err := e.files.CreateFolder(e.ctx, alice.ID, "X", nil)
	require.NoError(t, err)
	_, err = e.files.CreateFolder(e.ctx, alice.ID, "Y", nil)
	require.NoError(t, err)

	_, err = e.files.Rename(e.ctx, alice.ID, x.ID, "Y")
	assertKind(t, err, ErrDuplicateName)

	// Renaming a folder to its own name is not a collision
	_, err = e.files.Rename(e.ctx, alice.ID, x.ID, "X")
	assert.NoError(t, err)
}

func TestCrossUserAccess(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")
	bob := e.user(t, "bob@example.com")

	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a.txt", "secret")})
	require.NoError(t, err)
	id := f[0].ID

	_, err = e.files.Get(e.ctx, bob.ID, id)
	assertKind(t, err, ErrForbidden)

	_, err = e.files.Download(e.ctx, bob.ID, id)
	assertKind(t, err, ErrForbidden)

	assertKind(t, e.files.Delete(e.ctx, bob.ID, id), ErrForbidden)

	_, err = e.files.List(e.ctx, bob.ID, nil, "a.txt")
	require.NoError(t, err)

	listed, err := e.files.List(e.ctx, bob.ID, nil, "")
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.EqualValues(t, 6, e.usedSpace(t, alice.ID))
}

func TestSearchAndBreadcrumbs(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	a, err := e.files.CreateFolder(e.ctx, alice.ID, "Projects", nil)
	require.NoError(t, err)
	b, err := e.files.CreateFolder(e.ctx, alice.ID, "Go", &a.ID)
	require.NoError(t, err)
	f, err := e.files.Upload(e.ctx, alice.ID, &b.ID, []Upload{file("Notes.md", "# notes")})
	require.NoError(t, err)

	found, err := e.files.List(e.ctx, alice.ID, nil, "notes")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, f[0].ID, found[0].ID)

	details, err := e.files.Get(e.ctx, alice.ID, f[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []Crumb{{a.ID, "Projects"}, {b.ID, "Go"}, {f[0].ID, "Notes.md"}}, details.Breadcrumbs)
}

func TestDownloadErrors(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	folder, err := e.files.CreateFolder(e.ctx, alice.ID, "Docs", nil)
	require.NoError(t, err)

	_, err = e.files.Download(e.ctx, alice.ID, folder.ID)
	assertKind(t, err, ErrIsAFolder)

	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a.txt", "x")})
	require.NoError(t, err)

	require.NoError(t, e.blobs.Delete(e.ctx, f[0].StoragePath))

	_, err = e.files.Download(e.ctx, alice.ID, f[0].ID)
	assertKind(t, err, ErrNotFoundOnDisk)

	// Deleting a file whose blob is already gone still frees the space
	require.NoError(t, e.files.Delete(e.ctx, alice.ID, f[0].ID))
	assert.Zero(t, e.usedSpace(t, alice.ID))
}

func TestDownloadUsesBlobSize(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a.txt", "hello")})
	require.NoError(t, err)

	// The blob changed behind the row's back
	require.NoError(t, e.blobs.Put(e.ctx, f[0].StoragePath, strings.NewReader("hello world"), 11, "text/plain"))

	b, err := e.files.Download(e.ctx, alice.ID, f[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), b.Size)
	assert.Equal(t, "hello world", readBlob(t, b))
}
