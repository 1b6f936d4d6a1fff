package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadRecords decodes a JSON array of product records, keeping each element
// raw so one malformed record does not reject the rest of the file.
func ReadRecords(r io.Reader) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode product records: %w", err)
	}
	return records, nil
}

// ReadRecordsFile loads product records from a JSON file on disk.
func ReadRecordsFile(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return ReadRecords(f)
}
