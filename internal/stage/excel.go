package stage

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"fedscan/internal/apperrors"
	"fedscan/internal/artifacts"
	"fedscan/internal/config"
	"fedscan/internal/fedresurs"
	"fedscan/internal/launcher"
)

// Spreadsheet columns that always come first, in this order. Everything else
// is a message field and follows alphabetically.
var specialColumns = []string{
	colURL,
	colTitle,
	colSubtitle,
	colPublisher,
	colINN,
	colOGRN,
	colIdentifier,
	colClassifier,
	colDescription,
	colRelated,
	colError,
}

const (
	colURL         = "url"
	colTitle       = "Основной заголовок"
	colSubtitle    = "Подзаголовок"
	colPublisher   = "Публикатор"
	colINN         = "ИНН"
	colOGRN        = "ОГРН"
	colIdentifier  = "Идентификатор"
	colClassifier  = "Классификатор"
	colDescription = "Описание"
	colRelated     = "Связанные сообщения"
	colError       = "Ошибка"
)

// MakeExcelOptions configures stage 4.
type MakeExcelOptions struct {
	Open bool
}

// RunMakeExcel flattens every raw content file into output.xlsx. The
// spreadsheet is overwritten on each run. Afterwards the finalizer verifies
// the file exists, reports its size and optionally opens it with the OS
// default handler.
func RunMakeExcel(cfg *config.Config, paths *config.Paths, store *artifacts.Store, logger *slog.Logger, opts MakeExcelOptions) error {
	files, err := store.ListJSONFiles(paths.RawContentsDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return apperrors.InputArtifactMissing(paths.RawContentsDir, launcher.BinRawContents)
	}

	var records []map[string]string
	for _, file := range files {
		var contents fedresurs.RawContents
		if err := store.ReadJSON(file, &contents); err != nil {
			return err
		}
		records = append(records, flattenContents(contents)...)
		logger.Info("raw content file loaded",
			slog.String("file", file),
			slog.Int("messages", len(contents)))
	}

	workbook, columns, err := buildWorkbook(records)
	if err != nil {
		return fmt.Errorf("failed to build spreadsheet: %w", err)
	}
	defer workbook.Close()

	if err := workbook.SaveAs(paths.OutputFile); err != nil {
		return fmt.Errorf("failed to save spreadsheet: %w", err)
	}

	logger.Info("spreadsheet written",
		slog.String("path", paths.OutputFile),
		slog.Int("rows", len(records)),
		slog.Int("columns", len(columns)))

	return finalize(paths, logger, opts.Open)
}

// flattenContents turns one raw content file into spreadsheet records in a
// stable URL order.
func flattenContents(contents fedresurs.RawContents) []map[string]string {
	urls := make([]string, 0, len(contents))
	for u := range contents {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	records := make([]map[string]string, 0, len(urls))
	for _, u := range urls {
		records = append(records, flattenMessage(u, contents[u]))
	}
	return records
}

// flattenMessage maps one message to column values. Lease-subject rows are
// joined into numbered multi-line cells, related messages into
// `number: "title"` lines, and every message field becomes its own column.
func flattenMessage(url string, msg fedresurs.MessageContent) map[string]string {
	record := map[string]string{
		colURL:      url,
		colTitle:    msg.Header.Title,
		colSubtitle: msg.Header.Subtitle,
	}

	if msg.Error != "" {
		record[colError] = msg.Error
	}

	if msg.Publisher != nil {
		record[colPublisher] = msg.Publisher.Name
		if msg.Publisher.INN != 0 {
			record[colINN] = fmt.Sprintf("%d", msg.Publisher.INN)
		}
		if msg.Publisher.OGRN != 0 {
			record[colOGRN] = fmt.Sprintf("%d", msg.Publisher.OGRN)
		}
	}

	if subjects, ok := msg.Tables[fedresurs.LeaseSubjectsTable]; ok {
		var ids, classes, descs []string
		for _, row := range subjects {
			ids = append(ids, numbered(row.Num, row.Identifier))
			classes = append(classes, numbered(row.Num, row.Classifier))
			descs = append(descs, numbered(row.Num, row.Description))
		}
		record[colIdentifier] = strings.Join(ids, "\n")
		record[colClassifier] = strings.Join(classes, "\n")
		record[colDescription] = strings.Join(descs, "\n")
	}

	if len(msg.Related) > 0 {
		keys := make([]string, 0, len(msg.Related))
		for k := range msg.Related {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var lines []string
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %q", k, msg.Related[k]))
		}
		record[colRelated] = strings.Join(lines, "\n")
	}

	for key, value := range msg.Fields {
		record[key] = value
	}

	return record
}

// numbered renders a table cell line like "1. value", with a placeholder
// when the value is missing.
func numbered(num, value string) string {
	if value == "" {
		value = "нет данных"
	}
	return num + ". " + value
}

// buildWorkbook lays the records out on one sheet: special columns first,
// the rest alphabetical, URL cells as clickable hyperlinks.
func buildWorkbook(records []map[string]string) (*excelize.File, []string, error) {
	columns := orderColumns(records)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	setCell := func(col, row int, value string) (string, error) {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return "", err
		}
		return cell, f.SetCellValue(sheet, cell, value)
	}

	for c, name := range columns {
		if _, err := setCell(c+1, 1, name); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("failed to write header %s: %w", name, err)
		}
	}

	for r, record := range records {
		for c, name := range columns {
			value, ok := record[name]
			if !ok || value == "" {
				continue
			}
			cell, err := setCell(c+1, r+2, value)
			if err != nil {
				f.Close()
				return nil, nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
			if name == colURL && strings.HasPrefix(value, "http") {
				if err := f.SetCellHyperLink(sheet, cell, value, "External"); err != nil {
					f.Close()
					return nil, nil, fmt.Errorf("failed to link cell %s: %w", cell, err)
				}
			}
		}
	}

	return f, columns, nil
}

// orderColumns returns the union of all record keys: special columns that
// actually occur first in their fixed order, the remainder sorted.
func orderColumns(records []map[string]string) []string {
	seen := make(map[string]bool)
	for _, record := range records {
		for key := range record {
			seen[key] = true
		}
	}

	special := make(map[string]bool, len(specialColumns))
	var columns []string
	for _, name := range specialColumns {
		special[name] = true
		if seen[name] {
			columns = append(columns, name)
		}
	}

	var rest []string
	for key := range seen {
		if !special[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(columns, rest...)
}

// finalize checks the compiled spreadsheet and optionally opens it.
func finalize(paths *config.Paths, logger *slog.Logger, open bool) error {
	info, err := os.Stat(paths.OutputFile)
	if err != nil {
		return apperrors.NewMissingOutput(paths.OutputFile,
			"check that "+paths.RawContentsDir+" contains raw content files and review the stage logs")
	}

	logger.Info("spreadsheet ready",
		slog.String("path", paths.OutputFile),
		slog.Int64("size_bytes", info.Size()))

	if open {
		if err := openWithDefaultHandler(paths.OutputFile); err != nil {
			logger.Warn("could not open spreadsheet",
				slog.String("path", paths.OutputFile),
				slog.String("error", err.Error()))
		}
	}
	return nil
}
