package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aluiziolira/go-equipment-catalog/models"
)

func testLead() *models.Lead {
	return &models.Lead{
		ID:        "b9f6d1de",
		ItemID:    "m-1",
		ItemName:  "Массажер GR-100",
		Name:      "Иван",
		Phone:     "+79135551234",
		Company:   "Мясокомбинат",
		Source:    models.LeadSourceCatalog,
		Comment:   "нужен КП",
		CreatedAt: time.Date(2025, 11, 4, 13, 9, 13, 0, time.UTC),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leads", "leads.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write([]*models.Lead{testLead()}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	if records[0][0] != "id" || records[0][6] != "phone" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "2025-11-04T13:09:13Z" || records[1][4] != "Массажер GR-100" {
		t.Fatalf("unexpected record: %v", records[1])
	}
}

func TestCSVWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")

	for i := 0; i < 2; i++ {
		writer, err := NewCSVWriter(path)
		if err != nil {
			t.Fatalf("create csv writer: %v", err)
		}
		if err := writer.Write([]*models.Lead{testLead()}); err != nil {
			t.Fatalf("write csv: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("close csv: %v", err)
		}
	}

	if records := readCSV(t, path); len(records) != 3 {
		t.Fatalf("records=%d, want header plus 2 rows", len(records))
	}
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leads.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write([]*models.Lead{testLead(), testLead()}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		var decoded models.Lead
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if decoded.Phone != "+79135551234" {
			t.Fatalf("phone=%q", decoded.Phone)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if count != 2 {
		t.Fatalf("json lines=%d, want 2", count)
	}
}

func TestNewWriter(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "leads.csv")

	writer, err := NewWriter(FormatDual, csvPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Write([]*models.Lead{testLead()}); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}

	if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
		t.Fatalf("csv file missing or empty")
	}
	if info, err := os.Stat(filepath.Join(dir, "leads.jsonl")); err != nil || info.Size() == 0 {
		t.Fatalf("jsonl file missing or empty")
	}

	if _, err := NewWriter("xml", csvPath); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
