package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Service_ArchiveImport(t *testing.T) {
	putter := &fakePutter{}
	svc := newS3Service(putter, "archives", "imports")
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }

	key, err := svc.ArchiveImport(context.Background(), "T1", "../Stock été.xlsx", "application/xlsx", []byte("data"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "imports/T1/2025/03/"), key)
	assert.True(t, strings.HasSuffix(key, "-Stock__t_.xlsx"), key)
	assert.Equal(t, "archives", aws.ToString(putter.input.Bucket))
	assert.Equal(t, key, aws.ToString(putter.input.Key))
	assert.Equal(t, []byte("data"), putter.body)
	assert.Equal(t, "T1", putter.input.Metadata["company-id"])
}

func TestS3Service_ArchiveImportError(t *testing.T) {
	svc := newS3Service(&fakePutter{err: errors.New("denied")}, "archives", "imports")
	_, err := svc.ArchiveImport(context.Background(), "T1", "a.csv", "text/csv", []byte("x"))
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "upload", sanitizeFilename(""))
	assert.Equal(t, "prix.csv", sanitizeFilename(`C:\exports\prix.csv`))
	assert.Equal(t, "a_b.xlsx", sanitizeFilename("a b.xlsx"))
}
