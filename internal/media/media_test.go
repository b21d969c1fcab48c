package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPutter struct {
	input *s3.PutObjectInput
	err   error
}

func (r *recordingPutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	r.input = params
	return &s3.PutObjectOutput{}, r.err
}

func TestNewUploader_Selection(t *testing.T) {
	ctx := context.Background()

	u, err := NewUploader(ctx, Config{})
	require.NoError(t, err)
	_, err = u.Upload(ctx, UploadInput{Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrUploaderDisabled)

	u, err = NewUploader(ctx, Config{LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalUploader{}, u)
}

func TestLocalUploader_WritesUnderResultDir(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir, "/media/")
	require.NoError(t, err)

	res, err := u.Upload(context.Background(), UploadInput{
		Filename:    "result-1/variation-1.png",
		ContentType: "image/png",
		Body:        bytes.NewReader([]byte("png")),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "result-1/"))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, "/media/"+res.Key, res.URL)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = u.Upload(context.Background(), UploadInput{Filename: "x.png"})
	assert.Error(t, err)
}

func TestS3Uploader_Upload(t *testing.T) {
	putter := &recordingPutter{}
	u := &s3Uploader{client: putter, bucket: "b", region: "eu-north-1", prefix: "results"}

	res, err := u.Upload(context.Background(), UploadInput{
		Filename:    "abc/variation-2.png",
		ContentType: "image/png",
		Body:        bytes.NewReader([]byte("data")),
		Size:        4,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "results/abc/"))
	assert.Equal(t, "https://b.s3.eu-north-1.amazonaws.com/"+res.Key, res.URL)
	assert.Equal(t, "b", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(putter.input.ContentLength))

	u.baseURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/k", u.objectURL("k"))

	putter.err = errors.New("denied")
	_, err = u.Upload(context.Background(), UploadInput{Filename: "a.png", Body: strings.NewReader("x")})
	assert.ErrorContains(t, err, "denied")
}

func TestBuildKey(t *testing.T) {
	assert.NotContains(t, buildKey("", "plain.PNG"), "/")
	assert.True(t, strings.HasSuffix(buildKey("", "plain.PNG"), ".png"))
	assert.True(t, strings.HasPrefix(buildKey("p", "r/x.jpg"), "p/r/"))
}

func TestVariationFilename(t *testing.T) {
	dir := ArchiveDir("user-1", time.Unix(0, 42))
	assert.Equal(t, "user-1/42", dir)
	assert.Equal(t, "user-1/42/variation-1.png", VariationFilename(dir, 0, "image/png"))
	assert.Equal(t, "user-1/42/variation-2.jpg", VariationFilename(dir, 1, "IMAGE/JPEG"))
	assert.Equal(t, ".webp", Extension("image/webp"))
	assert.Equal(t, ".png", Extension(""))
}
