package fedresurs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Section headers on a message page.
const (
	sectionMessage = "Сообщение"
	sectionRelated = "Связанные сообщения"
)

// ParseMessagePage extracts the structured content of a rendered message
// page. Missing sections are omitted rather than treated as errors; the
// portal renders different section sets per message type.
func ParseMessagePage(pageURL, html string) (MessageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return MessageContent{URL: pageURL}, fmt.Errorf("failed to parse page html: %w", err)
	}

	content := MessageContent{
		URL:    pageURL,
		Header: parseHeader(doc),
	}
	content.Publisher = parsePublisher(doc)

	doc.Find("div.paragraph").Each(func(_ int, paragraph *goquery.Selection) {
		header := strings.TrimSpace(paragraph.Find("div.paragraph-header").First().Text())
		switch {
		case strings.Contains(header, sectionRelated):
			if related := parseRelated(paragraph); len(related) > 0 {
				content.Related = related
			}
		case header == sectionMessage:
			fields, tables := parseMessageSection(paragraph)
			if len(fields) > 0 {
				content.Fields = fields
			}
			if len(tables) > 0 {
				content.Tables = tables
			}
		}
	})

	return content, nil
}

// parseHeader reads the page headline and subheadline.
func parseHeader(doc *goquery.Document) Header {
	return Header{
		Title:    strings.TrimSpace(doc.Find(".headertext").First().Text()),
		Subtitle: strings.TrimSpace(doc.Find(".header-item").First().Text()),
	}
}

// parsePublisher reads the Публикатор block: company name, INN and OGRN.
// Returns nil when the block is absent or the name is missing.
func parsePublisher(doc *goquery.Document) *Publisher {
	main := doc.Find(`information-page-item[header="Публикатор"] .main`).First()
	if main.Length() == 0 {
		return nil
	}

	name := strings.TrimSpace(main.Find(".name span").First().Text())
	if name == "" {
		name = strings.TrimSpace(main.Find(".name").First().Text())
	}
	if name == "" {
		return nil
	}

	return &Publisher{
		Name: name,
		INN:  parseIN(main, "inn"),
		OGRN: parseIN(main, "ogrn"),
	}
}

// parseIN extracts a numeric identifier (inn or ogrn) from the publisher
// block. Returns 0 when absent or non-numeric.
func parseIN(main *goquery.Selection, kind string) int64 {
	raw := strings.TrimSpace(main.Find(".id-item."+kind+" span").First().Text())
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(raw, " ", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseMessageSection reads the key-value fields and tables of the Сообщение
// paragraph.
func parseMessageSection(paragraph *goquery.Selection) (map[string]string, map[string][]SubjectRow) {
	fields := make(map[string]string)
	paragraph.Find(".info-item").Each(func(_ int, item *goquery.Selection) {
		key := strings.TrimSpace(item.Find(".info-item-name").First().Text())
		value := extractText(item.Find(".info-item-value").First())
		if key != "" && value != "" {
			fields[key] = value
		}
	})

	tables := make(map[string][]SubjectRow)
	paragraph.Find("table.message-table").Each(func(i int, table *goquery.Selection) {
		rows := parseMessageTable(table)
		if len(rows) == 0 {
			return
		}
		name := strings.TrimSpace(paragraph.Find(".message-text-header").Eq(i).Text())
		if name == "" {
			name = "Таблица"
		}
		tables[truncate(name, 36)] = rows
	})

	return fields, tables
}

// parseMessageTable reads one message table. The first column is the row
// number, the second holds labelled inner items (identifier, classifier),
// the third is a free-form description.
func parseMessageTable(table *goquery.Selection) []SubjectRow {
	var rows []SubjectRow

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}

		row := SubjectRow{Num: strings.TrimSpace(cells.Eq(0).Text())}
		if row.Num == "" {
			return
		}

		cells.Eq(1).Find(".td-inner-item").Each(func(_ int, inner *goquery.Selection) {
			divs := inner.ChildrenFiltered("div")
			if divs.Length() < 2 {
				return
			}
			label := strings.TrimSpace(divs.Eq(0).Text())
			value := extractText(divs.Eq(1))
			switch {
			case strings.Contains(label, "Идентификатор"):
				row.Identifier = value
			case strings.Contains(label, "Классификатор"):
				row.Classifier = value
			}
		})

		if cells.Length() > 2 {
			row.Description = strings.TrimSpace(cells.Eq(2).Text())
		}

		if row.Identifier != "" || row.Classifier != "" || row.Description != "" {
			rows = append(rows, row)
		}
	})

	return rows
}

// parseRelated reads the related-messages paragraph into a map of
// "number от date" -> message title.
func parseRelated(paragraph *goquery.Selection) map[string]string {
	related := make(map[string]string)

	paragraph.Find(".info-item").Each(func(_ int, item *goquery.Selection) {
		numberDate := strings.TrimSpace(item.Find(".flex-shrink-0").First().Text())
		title := strings.TrimSpace(item.Find("a").First().Text())
		if title == "" {
			title = strings.TrimSpace(item.Find(".current-message").First().Text())
		}
		if numberDate != "" && title != "" {
			related[numberDate] = title
		}
	})

	return related
}

// extractText returns the cleaned text of a selection, falling back to its
// span children when the element's direct text is empty.
func extractText(sel *goquery.Selection) string {
	text := strings.TrimSpace(sel.Text())
	if text != "" {
		return collapseSpace(text)
	}

	var parts []string
	sel.Find("span").Each(func(_ int, span *goquery.Selection) {
		if t := strings.TrimSpace(span.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

// collapseSpace folds runs of whitespace into single spaces, keeping
// newlines out of cell values.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate limits a string to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
