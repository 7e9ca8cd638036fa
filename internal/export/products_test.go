package export

import (
	"bytes"
	"testing"
	"time"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestWriteProducts(t *testing.T) {
	sku := "LAMP-1"
	products := []model.Product{
		{
			ID:          uuid.New(),
			Name:        "Desk Lamp",
			SKU:         &sku,
			Price:       decimal.RequireFromString("49.90"),
			Discount:    decimal.RequireFromString("9.90"),
			Quantity:    7,
			IsAvailable: true,
			Tags:        []string{"home", "light"},
			CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		},
		{ID: uuid.New(), Name: "Pen"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProducts(&buf, products))

	file, err := xlsx.OpenReaderAt(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].String())

	lamp := sheet.Rows[1].Cells
	assert.Equal(t, "Desk Lamp", lamp[1].String())
	assert.Equal(t, "LAMP-1", lamp[2].String())
	assert.Equal(t, "40.00", lamp[7].String())
	assert.Equal(t, "home,light", lamp[11].String())
	assert.Equal(t, "2025-03-01 10:00:00", lamp[15].String())

	assert.Equal(t, "Pen", sheet.Rows[2].Cells[1].String())
}
