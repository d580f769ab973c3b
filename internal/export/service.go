package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"time"

	"disposal-platform/internal/catalog"
	"disposal-platform/internal/items"
)

// ItemLister is the minimal read surface needed for exports.
type ItemLister interface {
	List(ctx context.Context, f items.ListFilter) ([]items.Item, error)
}

// File is a rendered CSV download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service renders the item inventory as a CSV file.
//
// Format contract (consumed by spreadsheet tooling downstream):
// - UTF-8 with a byte-order-mark prefix so Excel detects the encoding.
// - Fixed column order; method/env/risk rendered as labels, not codes.
// - Filename stamped with the export time.
type Service struct {
	lister  ItemLister
	catalog *catalog.Catalog
	clock   func() time.Time
}

func NewService(lister ItemLister, cat *catalog.Catalog) *Service {
	return &Service{lister: lister, catalog: cat, clock: time.Now}
}

var header = []string{
	"ID", "name", "quantity", "facility_age", "method", "cost",
	"env_impact", "risk", "expected_benefit", "net_effect",
	"mitigation_note", "status", "created_at",
}

const createdAtLayout = "2006-01-02 15:04:05"

// Export lists all items newest first and renders them as CSV.
func (s *Service) Export(ctx context.Context) (File, error) {
	if s.lister == nil {
		return File{}, errors.New("export: item lister not configured")
	}

	list, err := s.lister.List(ctx, items.ListFilter{})
	if err != nil {
		return File{}, err
	}

	var buf bytes.Buffer
	buf.WriteString("\uFEFF")

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return File{}, err
	}
	for _, it := range list {
		if err := w.Write(s.row(it)); err != nil {
			return File{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return File{}, err
	}

	stamp := s.clock().UTC().Format("20060102_150405")
	return File{
		Name:        "memory_disposal_" + stamp + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

// Rows returns the flat records for the given items in export order,
// without the header. Exposed for presentation layers that render tables
// instead of files.
func (s *Service) Rows(list []items.Item) [][]string {
	out := make([][]string, 0, len(list))
	for _, it := range list {
		out = append(out, s.row(it))
	}
	return out
}

func (s *Service) row(it items.Item) []string {
	methodLabel := ""
	if it.Method != "" {
		methodLabel = s.catalog.Label(it.Method)
	}
	return []string{
		strconv.FormatInt(it.ID, 10),
		it.Name,
		strconv.Itoa(it.Quantity),
		strconv.Itoa(it.FacilityAge),
		methodLabel,
		strconv.FormatInt(it.Cost, 10),
		catalog.EnvLabel(it.EnvScore),
		catalog.RiskLabel(it.RiskScore),
		strconv.FormatInt(it.ExpectedBenefit, 10),
		strconv.FormatInt(it.NetEffect, 10),
		it.MitigationNote,
		string(it.Status),
		it.CreatedAt.UTC().Format(createdAtLayout),
	}
}
