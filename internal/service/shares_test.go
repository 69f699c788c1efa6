package service

import (
	"bitwise74/drive-api/internal/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareValidation(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")
	bob := e.user(t, "bob@example.com")

	folder, err := e.files.CreateFolder(e.ctx, alice.ID, "Docs", nil)
	require.NoError(t, err)
	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a.txt", "x")})
	require.NoError(t, err)
	fileID := f[0].ID

	cases := []struct {
		name string
		id   uint
		in   ShareInput
	}{
		{"unknown type", fileID, ShareInput{ShareType: "public"}},
		{"browse a file", fileID, ShareInput{ShareType: model.ShareBrowse}},
		{"page a folder", folder.ID, ShareInput{ShareType: model.SharePage}},
		{"direct a folder", folder.ID, ShareInput{ShareType: model.ShareDirect}},
		{"protected direct", fileID, ShareInput{ShareType: model.ShareDirect, IsPasswordProtected: true, Password: "pw"}},
		{"protected without password", fileID, ShareInput{ShareType: model.SharePage, IsPasswordProtected: true}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := e.shares.Share(e.ctx, alice.ID, c.id, c.in)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}

	_, err = e.shares.Share(e.ctx, bob.ID, fileID, ShareInput{ShareType: model.SharePage})
	assertKind(t, err, ErrForbidden)

	_, err = e.shares.Share(e.ctx, alice.ID, 9999, ShareInput{ShareType: model.SharePage})
	assertKind(t, err, ErrNotFound)
}

func TestShareURLs(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	folder, err := e.files.CreateFolder(e.ctx, alice.ID, "Docs", nil)
	require.NoError(t, err)
	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a.txt", "x")})
	require.NoError(t, err)

	res, err := e.shares.Share(e.ctx, alice.ID, f[0].ID, ShareInput{ShareType: model.ShareDirect})
	require.NoError(t, err)
	assert.Len(t, res.Token, 21)
	assert.Equal(t, publicURL+"/api/public/download/"+res.Token, res.URL)
	assert.True(t, res.File.IsPublic)

	res, err = e.shares.Share(e.ctx, alice.ID, f[0].ID, ShareInput{ShareType: model.SharePage})
	require.NoError(t, err)
	assert.Equal(t, publicURL+"/shared/"+res.Token, res.URL)

	res, err = e.shares.Share(e.ctx, alice.ID, folder.ID, ShareInput{ShareType: model.ShareBrowse})
	require.NoError(t, err)
	assert.Equal(t, publicURL+"/browse/"+res.Token, res.URL)
}

func TestReshareAndUnshare(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a.txt", "hello")})
	require.NoError(t, err)

	first, err := e.shares.Share(e.ctx, alice.ID, f[0].ID, ShareInput{ShareType: model.SharePage})
	require.NoError(t, err)

	info, err := e.shares.Info(e.ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Name)
	assert.EqualValues(t, 5, info.Size)
	assert.Equal(t, model.SharePage, info.ShareType)
	assert.False(t, info.IsFolder)

	second, err := e.shares.Share(e.ctx, alice.ID, f[0].ID, ShareInput{ShareType: model.SharePage})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = e.shares.Info(e.ctx, first.Token)
	assertKind(t, err, ErrNotFound)

	unshared, err := e.shares.Unshare(e.ctx, alice.ID, f[0].ID)
	require.NoError(t, err)
	assert.False(t, unshared.IsPublic)
	assert.Nil(t, unshared.PublicToken)
	assert.Nil(t, unshared.ShareType)

	_, err = e.shares.Info(e.ctx, second.Token)
	assertKind(t, err, ErrNotFound)

	_, err = e.shares.Download(e.ctx, second.Token, "")
	assertKind(t, err, ErrNotFound)
}

func TestPasswordProtectedDownload(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	content := "top secret bytes"
	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("secret.txt", content)})
	require.NoError(t, err)

	res, err := e.shares.Share(e.ctx, alice.ID, f[0].ID, ShareInput{
		ShareType:           model.SharePage,
		IsPasswordProtected: true,
		Password:            "letmein",
	})
	require.NoError(t, err)
	assert.True(t, res.File.IsPasswordProtected)

	info, err := e.shares.Info(e.ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, info.IsPasswordProtected)

	_, err = e.shares.Download(e.ctx, res.Token, "")
	assertKind(t, err, ErrPasswordRequired)
	assert.Equal(t, 401, KindOf(err).HTTPStatus())

	_, err = e.shares.Download(e.ctx, res.Token, "wrong")
	assertKind(t, err, ErrInvalidPassword)
	assert.Equal(t, 401, KindOf(err).HTTPStatus())

	blob, err := e.shares.Download(e.ctx, res.Token, "letmein")
	require.NoError(t, err)
	assert.Equal(t, "secret.txt", blob.Name)
	assert.Equal(t, content, readBlob(t, blob))
}

func TestPublicDownloadErrors(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	_, err := e.shares.Download(e.ctx, strings.Repeat("x", 21), "")
	assertKind(t, err, ErrNotFound)

	_, err = e.shares.Info(e.ctx, "short")
	assertKind(t, err, ErrNotFound)

	folder, err := e.files.CreateFolder(e.ctx, alice.ID, "Docs", nil)
	require.NoError(t, err)
	res, err := e.shares.Share(e.ctx, alice.ID, folder.ID, ShareInput{ShareType: model.ShareBrowse})
	require.NoError(t, err)

	_, err = e.shares.Download(e.ctx, res.Token, "")
	assertKind(t, err, ErrIsAFolder)
}

// browseTree builds Shared/{top.txt, Sub/{deep.txt}} and Private/{hidden.txt}
func browseTree(t *testing.T, e *env, userID string) (shared, sub, private *model.File, deep, hidden model.File) {
	t.Helper()

	var err error

	shared, err = e.files.CreateFolder(e.ctx, userID, "Shared", nil)
	require.NoError(t, err)
	sub, err = e.files.CreateFolder(e.ctx, userID, "Sub", &shared.ID)
	require.NoError(t, err)
	private, err = e.files.CreateFolder(e.ctx, userID, "Private", nil)
	require.NoError(t, err)

	_, err = e.files.Upload(e.ctx, userID, &shared.ID, []Upload{file("top.txt", "top")})
	require.NoError(t, err)

	up, err := e.files.Upload(e.ctx, userID, &sub.ID, []Upload{file("deep.txt", "deep")})
	require.NoError(t, err)
	deep = up[0]

	up, err = e.files.Upload(e.ctx, userID, &private.ID, []Upload{file("hidden.txt", "hidden")})
	require.NoError(t, err)
	hidden = up[0]

	return
}

func TestBrowse(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	shared, sub, private, deep, hidden := browseTree(t, e, alice.ID)

	res, err := e.shares.Share(e.ctx, alice.ID, shared.ID, ShareInput{ShareType: model.ShareBrowse})
	require.NoError(t, err)

	root, err := e.shares.Browse(e.ctx, res.Token, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Shared", root.Folder.Name)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "Sub", root.Children[0].Name)
	assert.Equal(t, "top.txt", root.Children[1].Name)
	assert.Equal(t, []Crumb{{shared.ID, "Shared"}}, root.Breadcrumbs)

	inner, err := e.shares.Browse(e.ctx, res.Token, "", &sub.ID)
	require.NoError(t, err)
	require.Len(t, inner.Children, 1)
	assert.Equal(t, "deep.txt", inner.Children[0].Name)
	assert.Equal(t, []Crumb{{shared.ID, "Shared"}, {sub.ID, "Sub"}}, inner.Breadcrumbs)

	_, err = e.shares.Browse(e.ctx, res.Token, "", &private.ID)
	assertKind(t, err, ErrNotFound)

	_, err = e.shares.Browse(e.ctx, res.Token, "", &deep.ID)
	assertKind(t, err, ErrNotFound)

	blob, err := e.shares.DownloadFromFolder(e.ctx, res.Token, deep.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "deep", readBlob(t, blob))

	_, err = e.shares.DownloadFromFolder(e.ctx, res.Token, hidden.ID, "")
	assertKind(t, err, ErrNotFound)

	_, err = e.shares.DownloadFromFolder(e.ctx, res.Token, sub.ID, "")
	assertKind(t, err, ErrIsAFolder)
}

func TestBrowseOtherUsersFiles(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")
	bob := e.user(t, "bob@example.com")

	shared, _, _, _, _ := browseTree(t, e, alice.ID)
	_, _, _, bobsFile, _ := browseTree(t, e, bob.ID)

	res, err := e.shares.Share(e.ctx, alice.ID, shared.ID, ShareInput{ShareType: model.ShareBrowse})
	require.NoError(t, err)

	_, err = e.shares.DownloadFromFolder(e.ctx, res.Token, bobsFile.ID, "")
	assertKind(t, err, ErrNotFound)
}

func TestBrowsePassword(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	shared, _, _, deep, _ := browseTree(t, e, alice.ID)

	res, err := e.shares.Share(e.ctx, alice.ID, shared.ID, ShareInput{
		ShareType:           model.ShareBrowse,
		IsPasswordProtected: true,
		Password:            "letmein",
	})
	require.NoError(t, err)

	_, err = e.shares.Browse(e.ctx, res.Token, "", nil)
	assertKind(t, err, ErrPasswordRequired)

	_, err = e.shares.Browse(e.ctx, res.Token, "nope", nil)
	assertKind(t, err, ErrInvalidPassword)

	_, err = e.shares.DownloadFromFolder(e.ctx, res.Token, deep.ID, "")
	assertKind(t, err, ErrPasswordRequired)

	_, err = e.shares.Browse(e.ctx, res.Token, "letmein", nil)
	assert.NoError(t, err)
}

func TestBrowseRequiresBrowseShare(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice@example.com")

	f, err := e.files.Upload(e.ctx, alice.ID, nil, []Upload{file("a.txt", "x")})
	require.NoError(t, err)

	res, err := e.shares.Share(e.ctx, alice.ID, f[0].ID, ShareInput{ShareType: model.SharePage})
	require.NoError(t, err)

	_, err = e.shares.Browse(e.ctx, res.Token, "", nil)
	assertKind(t, err, ErrNotBrowsable)

	_, err = e.shares.DownloadFromFolder(e.ctx, res.Token, f[0].ID, "")
	assertKind(t, err, ErrNotBrowsable)
}
