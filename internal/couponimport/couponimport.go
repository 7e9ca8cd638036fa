// Package couponimport bulk loads coupons from gzip compressed CSV files.
//
// Each line holds
//
//	CODE,discountType,discountValue,validFrom,validUntil,maxUses,minOrderAmount,description
//
// with RFC3339 dates. maxUses, minOrderAmount and description may be empty.
// Lines starting with # are comments.
package couponimport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"shopfront/internal/model"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Batch is the parsed content of one coupon file.
type Batch struct {
	Source  string
	Coupons []model.Coupon
	Invalid int
}

// Loader reads one coupon file.
type Loader interface {
	Load(ctx context.Context, name string) (*Batch, error)
}

// Store persists parsed coupons, skipping codes that already exist.
type Store interface {
	BulkInsert(ctx context.Context, coupons []model.Coupon) (int64, error)
}

const (
	minFields = 5
	maxFields = 8
	// checkEvery is how many records are read between context checks.
	checkEvery = 10_000
)

// parse decompresses r and reads every record. Malformed records are counted
// as invalid and skipped.
func parse(ctx context.Context, r io.Reader, source string, logger zerolog.Logger) (*Batch, error) {
	gz, err := pgzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gz.Close()

	cr := csv.NewReader(gz)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	batch := &Batch{Source: source}
	for line := 1; ; line++ {
		if line%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				logger.Warn().Str("source", source).Msg("coupon loading cancelled")
				return nil, err
			}
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			batch.Invalid++
			logger.Debug().Err(err).Str("source", source).Msg("skipping malformed coupon line")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error reading coupon file %s: %w", source, err)
		}

		c, err := parseRecord(record)
		if err != nil {
			batch.Invalid++
			logger.Debug().
				Err(err).
				Str("source", source).
				Int("line", line).
				Msg("skipping invalid coupon line")
			continue
		}
		batch.Coupons = append(batch.Coupons, c)
	}

	return batch, nil
}

// parseRecord converts one CSV record into a validated coupon.
func parseRecord(record []string) (model.Coupon, error) {
	if len(record) < minFields || len(record) > maxFields {
		return model.Coupon{}, fmt.Errorf("expected %d to %d fields, got %d", minFields, maxFields, len(record))
	}
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	c := model.Coupon{
		Code:         model.NormaliseCouponCode(field(0)),
		DiscountType: model.DiscountType(strings.ToLower(field(1))),
		IsActive:     true,
	}
	if c.Code == "" {
		return c, errors.New("empty code")
	}
	if !c.DiscountType.Valid() {
		return c, fmt.Errorf("unknown discount type %q", field(1))
	}

	var err error
	if c.DiscountValue, err = decimal.NewFromString(field(2)); err != nil {
		return c, errors.Wrap(err, "discount value")
	}
	if c.ValidFrom, err = time.Parse(time.RFC3339, field(3)); err != nil {
		return c, errors.Wrap(err, "valid from")
	}
	if c.ValidUntil, err = time.Parse(time.RFC3339, field(4)); err != nil {
		return c, errors.Wrap(err, "valid until")
	}
	if raw := field(5); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c, fmt.Errorf("invalid max uses %q", raw)
		}
		c.MaxUses = &n
	}
	if raw := field(6); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil || amount.IsNegative() {
			return c, fmt.Errorf("invalid minimum order amount %q", raw)
		}
		c.MinOrderAmount = &amount
	}
	if raw := field(7); raw != "" {
		c.Description = &raw
	}

	c.DiscountValue = c.DiscountValue.Round(2)
	if err := model.ValidateCoupon(&c); err != nil {
		return c, err
	}
	return c, nil
}
