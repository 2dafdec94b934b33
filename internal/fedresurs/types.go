package fedresurs

import "time"

// LeaseSubjectsTable is the table header used by leasing messages for the
// list of leased items. Stage 4 gives its rows dedicated columns.
const LeaseSubjectsTable = "Предметы финансовой аренды (лизинга)"

// MonthLink is a search URL covering one calendar month.
type MonthLink struct {
	Month string `json:"month"` // YYYY-MM
	URL   string `json:"url"`
}

// MonthLinkSet is the stage 1 artifact (1month_links.json). The query
// parameters are stored alongside the links so later runs can tell whether
// the cached artifact still matches what the user asked for.
type MonthLinkSet struct {
	Company     string      `json:"company"`
	Start       string      `json:"start"` // YYYY-MM
	End         string      `json:"end"`   // YYYY-MM
	GeneratedAt time.Time   `json:"generated_at"`
	Months      []MonthLink `json:"months"`
}

// Matches reports whether the set was generated for the given query.
func (s *MonthLinkSet) Matches(company, start, end string) bool {
	return s.Company == company && s.Start == start && s.End == end
}

// MonthMessages holds the message URLs discovered inside one month page.
type MonthMessages struct {
	Month        string   `json:"month"`
	URL          string   `json:"url"`
	MessageLinks []string `json:"message_links"`
}

// MessageLinkSet is the stage 2 artifact (2month_links.json).
type MessageLinkSet struct {
	Company     string          `json:"company"`
	GeneratedAt time.Time       `json:"generated_at"`
	Months      []MonthMessages `json:"months"`
}

// TotalLinks returns the number of message URLs across all months.
func (s *MessageLinkSet) TotalLinks() int {
	n := 0
	for _, m := range s.Months {
		n += len(m.MessageLinks)
	}
	return n
}

// Header is the message page headline.
type Header struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Publisher identifies the company that published a message.
type Publisher struct {
	Name string `json:"name"`
	INN  int64  `json:"inn,omitempty"`
	OGRN int64  `json:"ogrn,omitempty"`
}

// SubjectRow is one row of a message table, typically a leased item.
type SubjectRow struct {
	Num         string `json:"num"`
	Identifier  string `json:"identifier,omitempty"`
	Classifier  string `json:"classifier,omitempty"`
	Description string `json:"description,omitempty"`
}

// MessageContent is the parsed payload of a single message page, one entry
// of a stage 3 raw content file. Field and table keys keep the portal's
// Russian labels; they become spreadsheet columns in stage 4.
type MessageContent struct {
	URL       string                  `json:"url"`
	Header    Header                  `json:"header"`
	Publisher *Publisher              `json:"publisher,omitempty"`
	Fields    map[string]string       `json:"fields,omitempty"`
	Tables    map[string][]SubjectRow `json:"tables,omitempty"`
	Related   map[string]string       `json:"related,omitempty"`

	// Error is set instead of content when the page could not be fetched.
	// The entry stays in the artifact so the URL is not retried on resume.
	Error string `json:"error,omitempty"`
}

// RawContents maps message URL to parsed content, the format of each
// raw_contents<year>.json file.
type RawContents map[string]MessageContent
