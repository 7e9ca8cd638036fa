//go:build ignore

package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Generates sample coupon import files for local testing.
// couponbase1.gz holds percentage codes, couponbase2.gz fixed amount codes.
// couponbase3.gz repeats SUMMER10 (skipped on import) and carries two
// invalid lines (unknown discount type, reversed validity window).
func main() {
	dataDir := "data/coupons"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	from := time.Now().UTC().Truncate(24 * time.Hour)
	until := from.AddDate(0, 3, 0)
	window := from.Format(time.RFC3339) + "," + until.Format(time.RFC3339)

	files := map[string][]string{
		"couponbase1.gz": {
			"# code,discountType,discountValue,validFrom,validUntil,maxUses,minOrderAmount,description",
			"SUMMER10,percentage,10," + window + ",,,Summer sale",
			"WELCOME15,percentage,15," + window + ",1000,,First order discount",
			"HALFOFF,percentage,50," + window + ",50,2000.00,Half price on large orders",
		},
		"couponbase2.gz": {
			"FLAT100,fixed,100," + window + ",,500.00,100 off orders above 500",
			"FLAT250,fixed,250," + window + ",200,1500.00,",
			"FREESHIP,fixed,60," + window + ",,,Covers standard shipping",
		},
		"couponbase3.gz": {
			"SUMMER10,percentage,20," + window + ",,,Duplicate of file 1",
			"BOGUS1,bogo,1," + window + ",,,",
			"BACKWARDS,fixed,10," + until.Format(time.RFC3339) + "," + from.Format(time.RFC3339) + ",,,",
		},
	}

	for filename, lines := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createCouponFile(filePath, lines); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d lines\n", filePath, len(lines))
	}

	fmt.Println("\nSample coupon files created successfully!")
	fmt.Println("Import with: SHOP_COUPONS_IMPORT_FILES=" + filepath.Join(dataDir, "couponbase1.gz") + ",...")
	fmt.Println("  or: go run ./cmd/coupon-import " + filepath.Join(dataDir, "*.gz"))
}

func createCouponFile(filePath string, lines []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(gzipWriter, line); err != nil {
			return fmt.Errorf("failed to write coupon: %w", err)
		}
	}

	return nil
}
