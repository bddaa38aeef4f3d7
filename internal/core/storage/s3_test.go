package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_PutAndDelete(t *testing.T) {
	api := &fakeS3{objects: map[string]string{}}
	s := NewS3Store(api, "bucket", "/1PS_uploads/", "https://cdn.example.com/%s")
	ctx := context.Background()

	img, err := s.Put(ctx, "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.PublicID, "1PS_uploads/imageFile-"), img.PublicID)
	assert.Equal(t, "https://cdn.example.com/"+img.PublicID, img.URL)
	assert.Equal(t, "png-bytes", api.objects[img.PublicID])

	other, err := s.Put(ctx, "image/png", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.NotEqual(t, img.PublicID, other.PublicID)

	require.NoError(t, s.Delete(ctx, img.PublicID))
	assert.NotContains(t, api.objects, img.PublicID)
	assert.NoError(t, s.Delete(ctx, ""))
}

func TestS3Store_PutError(t *testing.T) {
	boom := errors.New("boom")
	s := NewS3Store(&fakeS3{objects: map[string]string{}, putErr: boom}, "bucket", "f", "")
	_, err := s.Put(context.Background(), "image/png", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, boom)
}

func TestS3Store_URLWithoutPublicBase(t *testing.T) {
	s := NewS3Store(nil, "b", "f", "")
	assert.Equal(t, "f/k", s.URL("f/k"))
}
