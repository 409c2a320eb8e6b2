package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads a jewelry catalog export and upserts its products.
//
// Recognized columns: key, name, description, category, material, price,
// currency, image_url, in_stock. Only key, name and price are required.
// price is either a decimal amount ("25.00") or whole cents via price_cents.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	currency string
}

func NewCSVImporter(r io.Reader, products ProductWriter, defaultCurrency string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, products: products, currency: defaultCurrency}
}

// Run upserts every non-blank row and returns how many products were written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("read headers: key column required")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		p, err := i.parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if p == nil {
			continue
		}
		if _, err := i.products.Upsert(ctx, *p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Key, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) parseRow(record []string, index map[string]int) (*domain.Product, error) {
	key := pick(record, index, "key")
	if key == "" {
		return nil, nil
	}
	name := pick(record, index, "name")
	if name == "" {
		return nil, fmt.Errorf("missing name for key %q", key)
	}

	cents, err := priceCents(record, index)
	if err != nil {
		return nil, fmt.Errorf("price for key %q: %w", key, err)
	}

	currency := strings.ToUpper(pick(record, index, "currency"))
	if currency == "" {
		currency = i.currency
	}

	inStock := true
	if raw := pick(record, index, "in_stock"); raw != "" {
		inStock, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("in_stock for key %q: %w", key, err)
		}
	}

	return &domain.Product{
		Key:         key,
		Name:        name,
		Description: pick(record, index, "description"),
		Category:    strings.ToLower(pick(record, index, "category")),
		Material:    pick(record, index, "material"),
		PriceCents:  cents,
		Currency:    currency,
		ImageURL:    pick(record, index, "image_url"),
		InStock:     inStock,
	}, nil
}

func priceCents(record []string, index map[string]int) (int64, error) {
	if raw := pick(record, index, "price_cents"); raw != "" {
		return strconv.ParseInt(raw, 10, 64)
	}
	raw := pick(record, index, "price")
	if raw == "" {
		return 0, errors.New("missing price")
	}
	return parseDecimalCents(raw)
}

// parseDecimalCents converts "25", "25.5" or "25.50" to cents without going
// through floating point.
func parseDecimalCents(s string) (int64, error) {
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	return units*100 + cents, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
