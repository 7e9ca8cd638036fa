package couponimport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockLoader is a mock implementation of the Loader interface.
type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(ctx context.Context, name string) (*Batch, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Batch), args.Error(1)
}

// fakeS3 serves objects from memory.
type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"bucket/coupons/a.gz": gzipLines(t, []string{
			"S3CODE,fixed,5,2025-01-01T00:00:00Z,2030-01-01T00:00:00Z",
		}),
	}}
	loader := NewS3Loader(client, "bucket", zerolog.Nop())

	batch, err := loader.Load(context.Background(), "coupons/a.gz")
	require.NoError(t, err)
	require.Len(t, batch.Coupons, 1)
	assert.Equal(t, "S3CODE", batch.Coupons[0].Code)
	assert.Equal(t, "s3://bucket/coupons/a.gz", batch.Source)

	_, err = loader.Load(context.Background(), "coupons/missing.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get object from S3")
}

func TestFallbackLoader(t *testing.T) {
	ctx := context.Background()
	s3Batch := &Batch{Source: "s3"}
	localBatch := &Batch{Source: "local"}

	tests := []struct {
		name      string
		setup     func(s3L, fileL *mockLoader)
		withS3    bool
		want      *Batch
		expectErr bool
	}{
		{
			name:   "S3 succeeds",
			withS3: true,
			setup: func(s3L, fileL *mockLoader) {
				s3L.On("Load", ctx, "coupons/test.gz").Return(s3Batch, nil)
			},
			want: s3Batch,
		},
		{
			name:   "S3 fails, falls back to local",
			withS3: true,
			setup: func(s3L, fileL *mockLoader) {
				s3L.On("Load", ctx, "coupons/test.gz").Return(nil, errors.New("access denied"))
				fileL.On("Load", ctx, "test.gz").Return(localBatch, nil)
			},
			want: localBatch,
		},
		{
			name:   "Local only",
			withS3: false,
			setup: func(s3L, fileL *mockLoader) {
				fileL.On("Load", ctx, "test.gz").Return(localBatch, nil)
			},
			want: localBatch,
		},
		{
			name:   "Both fail",
			withS3: true,
			setup: func(s3L, fileL *mockLoader) {
				s3L.On("Load", ctx, "coupons/test.gz").Return(nil, errors.New("access denied"))
				fileL.On("Load", ctx, "test.gz").Return(nil, errors.New("no such file"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s3L, fileL := new(mockLoader), new(mockLoader)
			tt.setup(s3L, fileL)

			var primary Loader
			if tt.withS3 {
				primary = s3L
			}
			loader := NewFallbackLoader(primary, fileL, "coupons/", zerolog.Nop())

			batch, err := loader.Load(ctx, "test.gz")

			if tt.expectErr {
				require.Error(t, err)
				assert.Nil(t, batch)
			} else {
				require.NoError(t, err)
				assert.Same(t, tt.want, batch)
			}
			s3L.AssertExpectations(t)
			fileL.AssertExpectations(t)
		})
	}
}
