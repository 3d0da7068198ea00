// Package extractor turns stored files into plain text. Text-bearing formats
// are parsed in process; image formats are delegated to the external OCR
// engine. Unreadable or empty content yields an empty result, not an error:
// only engine failures surface as errors.
package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kirillkom/docnamer/internal/core/domain"
	"github.com/kirillkom/docnamer/internal/core/ports"
	"github.com/kirillkom/docnamer/internal/infrastructure/ocr"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

type Dispatcher struct {
	storage ports.ObjectStorage
	ocr     *ocr.Client
}

func NewDispatcher(storage ports.ObjectStorage, ocrClient *ocr.Client) *Dispatcher {
	return &Dispatcher{storage: storage, ocr: ocrClient}
}

func (d *Dispatcher) Extract(ctx context.Context, rec *domain.FileRecord) (domain.ExtractionResult, error) {
	reader, err := d.storage.Open(ctx, rec.StoragePath)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("open source file: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("read source file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(rec.OriginalName))
	result, err := d.extractByFormat(ctx, rec.OriginalName, ext, raw)
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	result.OriginalExtension = ext
	return result, nil
}

func (d *Dispatcher) extractByFormat(ctx context.Context, name, ext string, raw []byte) (domain.ExtractionResult, error) {
	switch {
	case imageExtensions[ext]:
		if d.ocr == nil {
			return domain.ExtractionResult{}, fmt.Errorf("no ocr engine configured for %s", name)
		}
		return d.ocr.Recognize(ctx, name, raw)
	case ext == ".pdf":
		text, err := extractPDF(raw)
		if err != nil {
			return domain.ExtractionResult{}, fmt.Errorf("extract pdf %s: %w", name, err)
		}
		return domain.ExtractionResult{Text: text}, nil
	case ext == ".xlsx" || ext == ".xlsm":
		text, err := extractXLSX(raw)
		if err != nil {
			return domain.ExtractionResult{}, fmt.Errorf("extract spreadsheet %s: %w", name, err)
		}
		return domain.ExtractionResult{Text: text}, nil
	default:
		return domain.ExtractionResult{Text: extractPlaintext(raw)}, nil
	}
}
