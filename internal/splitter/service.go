package splitter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/dataepl/epl-ingestion/internal/event"
	"github.com/dataepl/epl-ingestion/internal/storage"
)

// ObjectStore is the storage surface the splitter needs.
type ObjectStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string, metadata map[string]string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	Stat(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
}

// Prefixes the splitter itself writes under; events for them are skipped to
// avoid reprocessing our own outputs.
var internalPrefixes = []string{
	"_archive/",
	string(CategoryDispatchSummary) + "/",
	string(CategoryDriverRoutes) + "/",
}

// Service splits uploaded workbooks into per-sheet CSV objects and archives
// the original.
type Service struct {
	store          ObjectStore
	acceptedSheets map[string]struct{} // nil = no restriction

	copyPollInterval time.Duration
	copyPollTimeout  time.Duration
	now              func() time.Time
}

func NewService(store ObjectStore, acceptedSheets []string) *Service {
	s := &Service{
		store:            store,
		copyPollInterval: time.Second,
		copyPollTimeout:  60 * time.Second,
		now:              time.Now,
	}
	if acceptedSheets != nil {
		s.acceptedSheets = make(map[string]struct{}, len(acceptedSheets))
		for _, name := range acceptedSheets {
			s.acceptedSheets[name] = struct{}{}
		}
	}
	return s
}

// Process runs the split-and-archive pipeline for one notification.
// Filter and classification misses are no-ops returning nil; a returned
// error means the invocation should be retried from scratch by the host,
// which is safe: exports overwrite, and the archive copy is only followed
// by a delete once the destination is confirmed.
func (s *Service) Process(ctx context.Context, n event.Notification) error {
	blobPath := n.BlobPath()

	for _, prefix := range internalPrefixes {
		if strings.HasPrefix(blobPath, prefix) {
			slog.InfoContext(ctx, "skipping internal path", "path", blobPath)
			return nil
		}
	}

	filename := strings.TrimSpace(path.Base(blobPath))
	filename = strings.TrimRight(filename, `'"`)

	if strings.HasPrefix(filename, "~$") || !strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		slog.InfoContext(ctx, "skipping non-xlsx or temp file", "file", filename)
		return nil
	}
	stem := filename[:len(filename)-len(".xlsx")]

	cls, recognized := Classify(filename)
	if !recognized {
		slog.WarnContext(ctx, "unknown file pattern, defaulting", "file", filename, "category", cls.Category)
	}

	year, month, found := ExtractYearMonth(stem)
	if !found {
		// Known limitation: upload date governs partitioning here, not the
		// file's business date.
		processing := s.now().UTC()
		year = fmt.Sprintf("%04d", processing.Year())
		month = fmt.Sprintf("%02d", int(processing.Month()))
		slog.WarnContext(ctx, "no valid date in filename, using processing date", "file", filename, "year", year, "month", month)
	}
	slog.InfoContext(ctx, "classified upload",
		"file", filename, "category", cls.Category, "target_sheet", cls.TargetSheet, "year", year, "month", month)

	source, err := s.store.Get(ctx, blobPath)
	if err != nil {
		return fmt.Errorf("read source %s: %w", blobPath, err)
	}
	defer source.Close()

	wb, err := OpenWorkbook(source)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", filename, err)
	}
	defer wb.Close()

	sheets, ok := s.selectSheets(ctx, wb.SheetNames(), cls, filename)
	if !ok {
		return nil
	}

	for _, sheet := range sheets {
		csvBytes, rowCount, err := wb.SheetCSV(sheet)
		if err != nil {
			return fmt.Errorf("export sheet %q of %s: %w", sheet, filename, err)
		}
		outKey := storage.OutputKey{
			Category: string(cls.Category),
			Year:     year,
			Month:    month,
			Stem:     stem,
			Sheet:    SanitizeSheetName(sheet),
		}.Key()

		err = s.store.Put(ctx, outKey, bytes.NewReader(csvBytes), int64(len(csvBytes)), "text/csv",
			map[string]string{"source": "excel", "sheet": sheet})
		if err != nil {
			return fmt.Errorf("write %s: %w", outKey, err)
		}
		slog.InfoContext(ctx, "wrote CSV", "key", outKey, "rows", rowCount)
	}

	return s.archive(ctx, blobPath, storage.ArchiveKey{
		Category: string(cls.Category),
		Year:     year,
		Month:    month,
		Name:     filename,
	}.Key())
}

// selectSheets narrows the workbook's sheets per the classification and the
// optional allow-list. ok is false when there is nothing to export.
func (s *Service) selectSheets(ctx context.Context, names []string, cls Classification, filename string) ([]string, bool) {
	if cls.TargetSheet != "" {
		for _, name := range names {
			if name == cls.TargetSheet {
				return []string{cls.TargetSheet}, true
			}
		}
		slog.WarnContext(ctx, "target sheet not found", "file", filename, "target", cls.TargetSheet, "available", names)
		return nil, false
	}

	if s.acceptedSheets != nil {
		var kept []string
		for _, name := range names {
			if _, accepted := s.acceptedSheets[name]; accepted {
				kept = append(kept, name)
			}
		}
		names = kept
	}
	if len(names) == 0 {
		slog.WarnContext(ctx, "no sheets to export", "file", filename)
		return nil, false
	}
	return names, true
}

// archive relocates the original: server-side copy, confirm the destination
// exists, then delete the source. The delete never runs unless the copy is
// confirmed, so a partial failure can never lose the only copy of the data.
func (s *Service) archive(ctx context.Context, srcKey, archiveKey string) error {
	if err := s.store.Copy(ctx, srcKey, archiveKey); err != nil {
		return fmt.Errorf("archive copy %s: %w", srcKey, err)
	}

	confirmed, err := s.waitForCopy(ctx, archiveKey)
	if err != nil {
		return err
	}
	if !confirmed {
		slog.ErrorContext(ctx, "archive copy did not succeed, source not deleted", "source", srcKey, "archive", archiveKey)
		return nil
	}

	if err := s.store.Remove(ctx, srcKey); err != nil {
		return fmt.Errorf("delete archived source %s: %w", srcKey, err)
	}
	slog.InfoContext(ctx, "archived original and deleted source", "archive", archiveKey, "source", srcKey)
	return nil
}

// waitForCopy polls the destination until the copy is visible or the
// bounded wait elapses.
func (s *Service) waitForCopy(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.copyPollTimeout)
	defer cancel()

	ticker := time.NewTicker(s.copyPollInterval)
	defer ticker.Stop()

	for {
		exists, err := s.store.Stat(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return false, nil
			}
			return false, fmt.Errorf("confirm archive copy %s: %w", key, err)
		}
		if exists {
			return true, nil
		}

		select {
		case <-ctx.Done():
			return false, nil
		case <-ticker.C:
		}
	}
}
