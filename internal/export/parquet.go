package export

import (
	"fmt"

	"github.com/lehigh-university-libraries/cardscanner/internal/models"
	"github.com/parquet-go/parquet-go"
)

// WriteParquet stores contacts as a parquet table, one row per contact
func WriteParquet(path string, contacts []models.ContactRecord) error {
	if len(contacts) == 0 {
		return fmt.Errorf("no contacts to write")
	}
	if err := parquet.WriteFile(path, contacts); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}

// ReadParquet loads a contacts table written by WriteParquet
func ReadParquet(path string) ([]models.ContactRecord, error) {
	rows, err := parquet.ReadFile[models.ContactRecord](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}
