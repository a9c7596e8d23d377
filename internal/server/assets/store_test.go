package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/slidedeck/internal/logging"
	sc "github.com/dmitrijs2005/slidedeck/internal/server/config"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []*s3.DeleteObjectInput
	putErr  error
	delErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	b, _ := io.ReadAll(in.Body)
	f.bodies = append(f.bodies, b)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	if f.delErr != nil {
		return nil, f.delErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func newTestStore(client objectAPI) *Store {
	s := newStore(client, "deck", "https://deck.s3.amazonaws.com/", 64, 1_000_000, logging.Nop())
	s.now = func() time.Time { return time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestUpload_KeyAndURL(t *testing.T) {
	f := &fakeS3{}
	s := newTestStore(f)

	url, ok := s.Upload(context.Background(), []byte("not really a png"), "Logo.PNG", "image/png")
	require.True(t, ok)
	require.Len(t, f.puts, 1)

	key := aws.ToString(f.puts[0].Key)
	assert.Regexp(t, `^images/2025/03/07/[0-9a-f-]{36}\.png$`, key)
	assert.Equal(t, "https://deck.s3.amazonaws.com/"+key, url)
	assert.Equal(t, "deck", aws.ToString(f.puts[0].Bucket))
	assert.Equal(t, "image/png", aws.ToString(f.puts[0].ContentType))
	assert.Equal(t, []byte("not really a png"), f.bodies[0])
}

func TestUpload_ExtensionFromContentType(t *testing.T) {
	f := &fakeS3{}
	s := newTestStore(f)

	_, ok := s.Upload(context.Background(), []byte{0xff, 0xd8}, "blob", "image/jpeg")
	require.True(t, ok)
	assert.Regexp(t, `\.jpg$`, aws.ToString(f.puts[0].Key))
}

func TestUpload_DetectsContentType(t *testing.T) {
	f := &fakeS3{}
	s := newTestStore(f)

	_, ok := s.Upload(context.Background(), pngBytes(t, 4, 4), "pic", "")
	require.True(t, ok)
	assert.Equal(t, "image/png", aws.ToString(f.puts[0].ContentType))
	assert.Regexp(t, `\.png$`, aws.ToString(f.puts[0].Key))
}

func TestUpload_DownscalesLargeImages(t *testing.T) {
	f := &fakeS3{}
	s := newTestStore(f)

	_, ok := s.Upload(context.Background(), pngBytes(t, 256, 128), "big.png", "image/png")
	require.True(t, ok)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(f.bodies[0]))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
	assert.Equal(t, int64(len(f.bodies[0])), aws.ToInt64(f.puts[0].ContentLength))
}

func TestUpload_OverPixelLimitStoredAsSent(t *testing.T) {
	f := &fakeS3{}
	s := newTestStore(f)
	in := pngHeader(16000, 16000)

	_, ok := s.Upload(context.Background(), in, "huge.png", "image/png")
	require.True(t, ok)
	assert.Equal(t, in, f.bodies[0])
}

func TestUpload_KeyExtensionIsSanitized(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		pattern     string
	}{
		{"content type wins over name", "a.png?x#y", "image/png", `^images/2025/03/07/[0-9a-f-]{36}\.png$`},
		{"unsafe name extension dropped", "a.p?n#g", "application/x-slidedeck-unknown", `^images/2025/03/07/[0-9a-f-]{36}$`},
		{"percent in name dropped", "a.%2e%2e", "application/x-slidedeck-unknown", `^images/2025/03/07/[0-9a-f-]{36}$`},
		{"plain name extension kept", "scan.TIFF", "application/x-slidedeck-unknown", `^images/2025/03/07/[0-9a-f-]{36}\.tiff$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeS3{}
			s := newTestStore(f)

			url, ok := s.Upload(context.Background(), []byte("x"), tt.filename, tt.contentType)
			require.True(t, ok)
			key := aws.ToString(f.puts[0].Key)
			assert.Regexp(t, tt.pattern, key)

			back, ok := s.KeyFromURL(url)
			require.True(t, ok)
			assert.Equal(t, key, back)
		})
	}
}

func TestUpload_Failure(t *testing.T) {
	s := newTestStore(&fakeS3{putErr: errors.New("s3 down")})

	url, ok := s.Upload(context.Background(), []byte("x"), "a.png", "image/png")
	assert.False(t, ok)
	assert.Empty(t, url)
}

func TestDelete(t *testing.T) {
	f := &fakeS3{}
	s := newTestStore(f)

	ok := s.Delete(context.Background(), "https://deck.s3.amazonaws.com/images/2025/03/07/abc.png")
	require.True(t, ok)
	require.Len(t, f.deletes, 1)
	assert.Equal(t, "images/2025/03/07/abc.png", aws.ToString(f.deletes[0].Key))
	assert.Equal(t, "deck", aws.ToString(f.deletes[0].Bucket))
}

func TestDelete_ForeignURLAndFailure(t *testing.T) {
	f := &fakeS3{}
	s := newTestStore(f)

	assert.False(t, s.Delete(context.Background(), "https://elsewhere.example.com/a.png"))
	assert.False(t, s.Delete(context.Background(), "https://deck.s3.amazonaws.com/"))
	assert.Empty(t, f.deletes)

	s = newTestStore(&fakeS3{delErr: errors.New("s3 down")})
	assert.False(t, s.Delete(context.Background(), "https://deck.s3.amazonaws.com/images/a.png"))
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://deck.s3.amazonaws.com", PublicBaseURL(&sc.Config{S3Bucket: "deck"}))
	assert.Equal(t, "http://minio:9000/deck", PublicBaseURL(&sc.Config{S3Bucket: "deck", S3BaseEndpoint: "http://minio:9000/"}))
	assert.Equal(t, "https://cdn.example.com", PublicBaseURL(&sc.Config{S3Bucket: "deck", S3BaseEndpoint: "http://minio:9000", S3PublicBaseURL: "https://cdn.example.com/"}))
}

func TestNewStore_UsesSeams(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return nil
	}

	cfg := &sc.Config{S3Bucket: "deck", S3Region: "us-east-1", S3AccessKeyID: "a", S3SecretAccessKey: "b", S3BaseEndpoint: "http://minio:9000"}
	s, err := NewStore(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://minio:9000/deck", s.publicBase)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err = NewStore(context.Background(), cfg, logging.Nop())
	assert.ErrorContains(t, err, "no config")
}
