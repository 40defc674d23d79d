package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"auction-manager/internal/auctionerrors"
	"auction-manager/internal/config"
)

var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

func TestMaxSizeReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		max     int64
		wantErr bool
	}{
		{name: "under_limit", input: "abc", max: 5},
		{name: "exact_limit", input: "abcde", max: 5},
		{name: "over_limit", input: "abcdef", max: 5, wantErr: true},
		{name: "empty", input: "", max: 5},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data, err := io.ReadAll(NewMaxSizeReader(strings.NewReader(tc.input), tc.max))
			if tc.wantErr {
				var limitErr *ReachLimitError
				require.True(t, errors.As(err, &limitErr))
				require.Equal(t, tc.max, limitErr.MaxBytes)
				require.Len(t, data, int(tc.max))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.input, string(data))
		})
	}
}

func TestReadImage(t *testing.T) {
	t.Parallel()

	img, err := ReadImage(bytes.NewReader(pngHeader), 1<<10)
	require.NoError(t, err)
	require.Equal(t, "image/png", img.ContentType)
	require.Equal(t, "png", img.Extension)

	_, err = ReadImage(strings.NewReader("<html><script>alert(1)</script></html>"), 1<<10)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidImage)

	_, err = ReadImage(bytes.NewReader(pngHeader), 4)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidImage)

	_, err = ReadImage(bytes.NewReader(nil), 4)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidImage)
}

func TestLocalStore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, "items/7/pic.png", "image/png", pngHeader)
	require.NoError(t, err)
	require.Equal(t, "/media/items/7/pic.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "items", "7", "pic.png"))
	require.NoError(t, err)
	require.Equal(t, pngHeader, data)

	require.NoError(t, store.Delete(ctx, "items/7/pic.png"))
	_, err = os.Stat(filepath.Join(dir, "items", "7", "pic.png"))
	require.True(t, os.IsNotExist(err))
	require.NoError(t, store.Delete(ctx, "items/7/pic.png"))

	_, err = store.Save(ctx, "../escape.png", "image/png", pngHeader)
	require.Error(t, err)
}

func TestS3Store(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:       "auto",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  aws.AnonymousCredentials{},
	})
	store, err := NewS3StoreWithClient(client, "auction-images", "https://cdn.example.com")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, "auctions/3/cover.png", "image/png", pngHeader)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/auctions/3/cover.png", url)

	require.NoError(t, store.Delete(ctx, "auctions/3/cover.png"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{
		"PUT /auction-images/auctions/3/cover.png",
		"DELETE /auction-images/auctions/3/cover.png",
	}, calls)
}

func TestNew(t *testing.T) {
	t.Parallel()

	store, err := New(context.Background(), config.StorageConfig{Backend: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &LocalStore{}, store)

	_, err = New(context.Background(), config.StorageConfig{Backend: "ftp"})
	require.Error(t, err)
}
