// Package export renders catalogue data as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"shopfront/internal/model"

	"github.com/tealeg/xlsx"
)

// ContentType is the media type of the files written by this package.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var productHeaders = []string{
	"ID", "Name", "SKU", "Brand", "CategoryID", "Price", "Discount", "EffectivePrice",
	"Quantity", "Available", "Featured", "Tags", "RatingAverage", "RatingCount",
	"Image", "CreatedAt", "UpdatedAt",
}

// WriteProducts writes products as a single sheet workbook to w.
func WriteProducts(w io.Writer, products []model.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productHeaders {
		header.AddCell().SetString(h)
	}

	for i := range products {
		p := &products[i]
		row := sheet.AddRow()

		row.AddCell().SetString(p.ID.String())
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(deref(p.SKU))
		row.AddCell().SetString(deref(p.Brand))
		if p.CategoryID != nil {
			row.AddCell().SetString(p.CategoryID.String())
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetString(p.Discount.StringFixed(2))
		row.AddCell().SetString(p.EffectivePrice().StringFixed(2))
		row.AddCell().SetInt(p.Quantity)
		row.AddCell().SetBool(p.IsAvailable)
		row.AddCell().SetBool(p.IsFeatured)
		row.AddCell().SetString(strings.Join(p.Tags, ","))
		row.AddCell().SetString(p.RatingAverage.StringFixed(2))
		row.AddCell().SetInt(p.RatingCount)
		row.AddCell().SetString(deref(p.Image))
		row.AddCell().SetString(p.CreatedAt.UTC().Format(time.DateTime))
		row.AddCell().SetString(p.UpdatedAt.UTC().Format(time.DateTime))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
