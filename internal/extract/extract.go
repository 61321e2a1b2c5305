// Package extract pulls plain text out of uploaded files so the retrieval
// engine never has to parse raw document bytes itself.
package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"local-llm-chatbot/internal/logger"
)

// ErrUnsupportedType means no extractor exists for the file's extension.
var ErrUnsupportedType = errors.New("extract: unsupported file type")

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".svg": {}, ".ico": {},
	".gif": {}, ".tif": {}, ".tiff": {}, ".webp": {}, ".bmp": {},
}

var codeExtensions = map[string]struct{}{
	".html": {}, ".css": {}, ".js": {}, ".jsx": {}, ".json": {}, ".cpp": {},
	".py": {}, ".ts": {}, ".tsx": {}, ".md": {}, ".env": {}, ".bat": {},
	".sh": {}, ".php": {}, ".cs": {}, ".rb": {}, ".java": {}, ".go": {},
	".rs": {}, ".yaml": {}, ".yml": {}, ".xml": {}, ".sql": {}, ".c": {}, ".h": {},
}

// Process extracts text from the file at path, dispatching on extension.
func Process(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	logger.Info("Processing file", "path", path, "type", ext)

	if _, ok := imageExtensions[ext]; ok {
		return readImage(path)
	}
	if _, ok := codeExtensions[ext]; ok {
		return readCode(path)
	}

	switch ext {
	case ".txt":
		return readText(path)
	case ".pdf":
		return readPDF(path)
	case ".xlsx", ".xls":
		return readExcel(path)
	case ".csv":
		return readCSV(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file %s: %w", path, err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Failed to extract PDF page text", "path", path, "page", i, "error", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text extracted from PDF %s", path)
	}
	return sb.String(), nil
}

func readExcel(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close workbook", "path", path, "error", err)
		}
	}()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		sb.WriteString("Sheet: " + sheet + "\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func readCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open CSV %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}

	var sb strings.Builder
	for _, record := range records {
		sb.WriteString(strings.Join(record, "\t"))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func readCode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read code file %s: %w", path, err)
	}
	filename := filepath.Base(path)
	ext := filepath.Ext(path)

	header := fmt.Sprintf("File: %s\nType: %s file\n\n", filename, ext)
	return header + string(data), nil
}

// readImage stores a metadata placeholder; actual vision processing happens
// at chat time with a vision-capable model.
func readImage(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat image %s: %w", path, err)
	}
	filename := filepath.Base(path)
	sizeMB := float64(info.Size()) / (1024 * 1024)

	return fmt.Sprintf(`Image File: %s
Type: Image
Size: %.2f MB
Path: %s
Description: This is an image file that can be analyzed using vision-capable models.
To view its contents, ask about this specific image.`, filename, sizeMB, path), nil
}
