package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"photo.png":               "photo.png",
		"my holiday pic!!.jpeg":   "my_holiday_pic_.jpeg",
		"../../etc/passwd":        "passwd",
		`C:\Users\me\cv.pdf`:      "cv.pdf",
		"..":                      "file",
		"":                        "file",
		"résumé 2024.pdf":         "r_sum_2024.pdf",
		"semi;colon&amp.webp":     "semi_colon_amp.webp",
		".hidden":                 "hidden",
		"under_score-dash.v2.png": "under_score-dash.v2.png",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeName(in), "input %q", in)
	}
}

func TestSanitizeName_CapsLength(t *testing.T) {
	long := strings.Repeat("a", 300) + ".png"
	got := SanitizeName(long)
	assert.Len(t, got, MaxNameLen)
	assert.True(t, strings.HasSuffix(got, ".png"))

	noExt := SanitizeName(strings.Repeat("b", 300))
	assert.Len(t, noExt, MaxNameLen)

	hugeExt := SanitizeName("x." + strings.Repeat("c", 300))
	assert.LessOrEqual(t, len(hugeExt), MaxNameLen)
	assert.NotEmpty(t, hugeExt)
}

func TestNewKeyAndPublicPath(t *testing.T) {
	now := time.Unix(0, 1700000000123456789)
	key := NewKey("wall", "a b.png", ".png", now)
	assert.Equal(t, "wall/1700000000123456789_a_b.png", key)
	assert.Equal(t, "wall/1700000000123456789_evil.png", NewKey("wall", "evil.html", ".png", now))
	assert.Equal(t, "wall/1700000000123456789_file.pdf", NewKey("wall", "", ".pdf", now))
	assert.Equal(t, "wall/1700000000123456789_notes.txt", NewKey("wall", "notes.txt", "", now))
	assert.Equal(t, "uploads/wall/1700000000123456789_a_b.png", PublicPath(key))

	back, ok := KeyFromPublicPath(PublicPath(key))
	require.True(t, ok)
	assert.Equal(t, key, back)

	for _, bad := range []string{"wall/x.png", "uploads/../secret", "uploads//x", "uploads/", "uploads/a/./b"} {
		_, ok := KeyFromPublicPath(bad)
		assert.False(t, ok, bad)
	}
}

func TestLocalStore_PutOpenDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "wall", "timetables")
	require.NoError(t, err)
	ctx := context.Background()
	data := []byte("blob contents")

	require.NoError(t, store.Put(ctx, "wall/1_a.png", bytes.NewReader(data), int64(len(data)), "image/png"))

	rc, size, err := store.Open(ctx, "wall/1_a.png")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)
	assert.Equal(t, int64(len(data)), size)

	require.NoError(t, store.Delete(ctx, "wall/1_a.png"))
	assert.ErrorIs(t, store.Delete(ctx, "wall/1_a.png"), ErrNotExist)
	_, _, err = store.Open(ctx, "wall/1_a.png")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalStore_WriteOnce(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "wall")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "wall/1_a.png", strings.NewReader("first"), 5, ""))
	err = store.Put(ctx, "wall/1_a.png", strings.NewReader("second"), 6, "")
	assert.ErrorIs(t, err, ErrExists)

	got, err := os.ReadFile(filepath.Join(dir, "wall", "1_a.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	entries, err := os.ReadDir(filepath.Join(dir, "wall"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staging files must not be left behind")
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../x", "/abs", "a/../../b", "", `a\b`} {
		assert.ErrorIs(t, store.Put(ctx, key, strings.NewReader("x"), 1, ""), ErrBadKey, key)
		assert.ErrorIs(t, store.Delete(ctx, key), ErrBadKey, key)
	}
}

type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	key := aws.ToString(in.Key)
	if _, ok := f.objects[key]; ok && aws.ToString(in.IfNoneMatch) == "*" {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "exists"}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := &S3Store{client: fake, bucket: "achievify"}
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "timetables/1_t.pdf", strings.NewReader("pdf"), 3, "application/pdf"))
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "achievify", aws.ToString(fake.puts[0].Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fake.puts[0].ContentLength))

	err := store.Put(ctx, "timetables/1_t.pdf", strings.NewReader("pdf"), 3, "application/pdf")
	assert.ErrorIs(t, err, ErrExists)

	rc, size, err := store.Open(ctx, "timetables/1_t.pdf")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "pdf", string(got))
	assert.Equal(t, int64(3), size)

	require.NoError(t, store.Delete(ctx, "timetables/1_t.pdf"))
	_, _, err = store.Open(ctx, "timetables/1_t.pdf")
	assert.ErrorIs(t, err, ErrNotExist)

	assert.ErrorIs(t, store.Put(ctx, "../x", strings.NewReader(""), 0, ""), ErrBadKey)
}
