// Package export renders catalog reports as Excel workbooks.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"neighborly/internal/domain"
	"neighborly/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Listings"

// Exporter writes catalog snapshots to xlsx files under a configured
// directory.
type Exporter struct {
	store  domain.ListingStore
	path   string
	logger *zerolog.Logger
}

func NewExporter(store domain.ListingStore, path string, logger *zerolog.Logger) *Exporter {
	if path == "" {
		path = "exports"
	}
	return &Exporter{
		store:  store,
		path:   path,
		logger: logger,
	}
}

// ExportCatalog writes every listing to a dated workbook and returns the
// file path.
func (e *Exporter) ExportCatalog(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	listings, err := e.store.ListListings(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting listings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	writeHeaders(f)
	for i, listing := range listings {
		writeListingRow(f, i+2, listing)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "C", "C", 16)
	_ = f.SetColWidth(sheetName, "D", "D", 12)
	_ = f.SetColWidth(sheetName, "E", "F", 20)
	_ = f.SetColWidth(sheetName, "G", "H", 12)
	_ = f.SetColWidth(sheetName, "I", "J", 18)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("catalog_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("listings", len(listings)).Msg("Excel file created")
	return filePath, nil
}

func writeHeaders(f *excelize.File) {
	headers := []string{
		"ID", "Title", "Category", "Price/Day", "Owner", "Location",
		"Rating", "Reviews", "Available", "Available Until",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetName, "A1", "J1", style)
}

func writeListingRow(f *excelize.File, row int, listing *models.Listing) {
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), listing.ID)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), listing.Title)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), listing.Category)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), listing.PricePerDay)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), listing.OwnerName)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row),
		fmt.Sprintf("%.4f, %.4f", listing.Location.Lat, listing.Location.Lon))
	_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), listing.Rating)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), listing.ReviewCount)
	_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), boolToYesNo(listing.Available))
	if !listing.AvailableUntil.IsZero() {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), listing.AvailableUntil.Format("02.01.2006"))
	}
}

func boolToYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
