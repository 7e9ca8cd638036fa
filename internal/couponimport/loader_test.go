package couponimport

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shopfront/internal/model"

	"github.com/klauspost/pgzip"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gzipLines compresses lines the way coupon files are shipped.
func gzipLines(t *testing.T, lines []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := pgzip.NewWriter(&buf)
	_, err := w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// createTestCouponFile writes a gzipped coupon file into a temp dir.
func createTestCouponFile(t *testing.T, filename string, lines []string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(filePath, gzipLines(t, lines), 0o600))
	return filePath
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		check   func(t *testing.T, c model.Coupon)
	}{
		{
			name: "Full percentage coupon",
			line: "summer10,percentage,10,2025-01-01T00:00:00Z,2025-12-31T23:59:59Z,100,50,Summer sale",
			check: func(t *testing.T, c model.Coupon) {
				assert.Equal(t, "SUMMER10", c.Code)
				assert.Equal(t, model.DiscountPercentage, c.DiscountType)
				require.NotNil(t, c.MaxUses)
				assert.Equal(t, 100, *c.MaxUses)
				require.NotNil(t, c.MinOrderAmount)
				assert.True(t, decimal.NewFromInt(50).Equal(*c.MinOrderAmount))
				require.NotNil(t, c.Description)
				assert.Equal(t, "Summer sale", *c.Description)
				assert.True(t, c.IsActive)
			},
		},
		{
			name: "Optional fields empty",
			line: "FLAT5,fixed,5,2025-01-01T00:00:00Z,2025-02-01T00:00:00Z,,",
			check: func(t *testing.T, c model.Coupon) {
				assert.Nil(t, c.MaxUses)
				assert.Nil(t, c.MinOrderAmount)
				assert.Nil(t, c.Description)
			},
		},
		{name: "Too few fields", line: "CODE,fixed,5", wantErr: true},
		{name: "Unknown type", line: "CODE,bogus,5,2025-01-01T00:00:00Z,2025-02-01T00:00:00Z", wantErr: true},
		{name: "Bad date", line: "CODE,fixed,5,yesterday,2025-02-01T00:00:00Z", wantErr: true},
		{name: "Percentage above 100", line: "CODE,percentage,150,2025-01-01T00:00:00Z,2025-02-01T00:00:00Z", wantErr: true},
		{name: "Window reversed", line: "CODE,fixed,5,2025-02-01T00:00:00Z,2025-01-01T00:00:00Z", wantErr: true},
		{name: "Zero max uses", line: "CODE,fixed,5,2025-01-01T00:00:00Z,2025-02-01T00:00:00Z,0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseRecord(strings.Split(tt.line, ","))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCouponFile(t, "coupons.gz", []string{
		"# code,type,value,from,until,maxUses,minOrder,description",
		"WELCOME10,percentage,10,2025-01-01T00:00:00Z,2030-01-01T00:00:00Z,,,",
		"",
		"FLAT50,fixed,50,2025-01-01T00:00:00Z,2030-01-01T00:00:00Z,10,500,Fifty off",
		"BROKEN,percentage,abc,2025-01-01T00:00:00Z,2030-01-01T00:00:00Z",
		`"UNTERMINATED,fixed,5`,
	})

	batch, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.NotNil(t, batch)
	require.Len(t, batch.Coupons, 2)
	assert.Equal(t, "WELCOME10", batch.Coupons[0].Code)
	assert.Equal(t, "FLAT50", batch.Coupons[1].Code)
	assert.Equal(t, 2, batch.Invalid)
}

func TestFileLoader_Load_Errors(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	t.Run("File not found", func(t *testing.T) {
		batch, err := loader.Load(context.Background(), "/nonexistent/coupons.gz")
		require.Error(t, err)
		assert.Nil(t, batch)
		assert.Contains(t, err.Error(), "failed to open coupon file")
	})

	t.Run("Not gzip", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "plain.gz")
		require.NoError(t, os.WriteFile(filePath, []byte("PLAINTEXT\n"), 0o600))

		batch, err := loader.Load(context.Background(), filePath)
		require.Error(t, err)
		assert.Nil(t, batch)
		assert.Contains(t, err.Error(), "failed to create gzip reader")
	})
}
