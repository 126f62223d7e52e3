package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Archiver = (*MinIOArchiver)(nil)
	_ Archiver = NoopArchiver{}
)

type fakePutter struct {
	bucket      string
	object      string
	contentType string
	body        []byte
	err         error
}

func (f *fakePutter) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.bucket = bucketName
	f.object = objectName
	f.contentType = opts.ContentType
	f.body, _ = io.ReadAll(reader)
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func newTestArchiver(p *fakePutter) *MinIOArchiver {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &MinIOArchiver{client: p, bucket: "imports", baseURL: "http://minio:9000/", logger: l.WithField("component", "archive")}
}

func TestObjectName(t *testing.T) {
	id := uuid.MustParse("0b0f6a57-3f5c-4d33-8d2e-54a5f7c1b9a0")

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"plain", "feed.xlsx", "imports/production_feed/0b0f6a57-3f5c-4d33-8d2e-54a5f7c1b9a0/feed.xlsx"},
		{"unix path", "../../etc/feed.xlsx", "imports/production_feed/0b0f6a57-3f5c-4d33-8d2e-54a5f7c1b9a0/feed.xlsx"},
		{"windows path", `C:\Users\ops\feed.xlsx`, "imports/production_feed/0b0f6a57-3f5c-4d33-8d2e-54a5f7c1b9a0/feed.xlsx"},
		{"empty", "", "imports/production_feed/0b0f6a57-3f5c-4d33-8d2e-54a5f7c1b9a0/upload"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ObjectName("production_feed", id, tc.filename))
		})
	}
}

func TestArchive_Uploads(t *testing.T) {
	p := &fakePutter{}
	a := newTestArchiver(p)
	id := uuid.New()

	url, err := a.Archive(context.Background(), "catalog", id, "materials.csv", []byte("MATERIAL\nSuede\n"))
	require.NoError(t, err)

	assert.Equal(t, "imports", p.bucket)
	assert.Equal(t, "text/csv", p.contentType)
	assert.Equal(t, "MATERIAL\nSuede\n", string(p.body))
	assert.Equal(t, "http://minio:9000/imports/imports/catalog/"+id.String()+"/materials.csv", url)
}

func TestArchive_Failure(t *testing.T) {
	a := newTestArchiver(&fakePutter{err: errors.New("access denied")})

	_, err := a.Archive(context.Background(), "catalog", uuid.New(), "materials.xlsx", []byte("x"))
	assert.ErrorContains(t, err, "access denied")
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, xlsxContentType, contentTypeFor("a.XLSX"))
	assert.Equal(t, "text/csv", contentTypeFor("a.csv"))
	assert.Equal(t, "application/vnd.ms-excel.sheet.macroEnabled.12", contentTypeFor("a.xlsm"))
}

func TestNewMinIOArchiver_RequiresConfig(t *testing.T) {
	_, err := NewMinIOArchiver(context.Background(), MinIOConfig{}, nil)
	assert.Error(t, err)
}

func TestNoopArchiver(t *testing.T) {
	url, err := NoopArchiver{}.Archive(context.Background(), "catalog", uuid.New(), "a.xlsx", nil)
	require.NoError(t, err)
	assert.Empty(t, url)
}
