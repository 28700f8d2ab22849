package model

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Label is the misinformation classification of a submission.
type Label string

const (
	LabelDetected   Label = "Detected"
	LabelUndetected Label = "Undetected"
)

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	return l == LabelDetected || l == LabelUndetected
}

// Sentinel replaces author and URL values that are unavailable or excluded.
const Sentinel = "None"

// DateLayout is the layout of the "Date Created" column.
const DateLayout = "2006-01-02 15:04:05"

var dateLayouts = []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate parses a "Date Created" value in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("model: unrecognized date %q", s)
}

// Timestamp is a time.Time that reads and writes the "Date Created" layout.
type Timestamp struct {
	time.Time
}

// MarshalText implements encoding.TextMarshaler.
func (t Timestamp) MarshalText() ([]byte, error) {
	if t.IsZero() {
		return nil, nil
	}
	return []byte(t.UTC().Format(DateLayout)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timestamp) UnmarshalText(b []byte) error {
	if len(bytes.TrimSpace(b)) == 0 {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Columns is the header of the data sheet, in order.
var Columns = []string{
	"Topic", "Subreddit", "Title", "Author", "Text", "URL Domain",
	"Date Created", "Downvotes", "Upvotes", "Upvote Ratio", "ID", "Is Misinformation",
}

// Record is one fetched and classified submission.
type Record struct {
	Topic       string    `csv:"Topic" json:"topic"`
	Subreddit   string    `csv:"Subreddit" json:"subreddit"`
	Title       string    `csv:"Title" json:"title"`
	Author      string    `csv:"Author" json:"author"`
	Text        string    `csv:"Text" json:"text"`
	URLDomain   string    `csv:"URL Domain" json:"url_domain"`
	CreatedAt   Timestamp `csv:"Date Created" json:"created_at"`
	Downvotes   int       `csv:"Downvotes" json:"downvotes"`
	Upvotes     int       `csv:"Upvotes" json:"upvotes"`
	UpvoteRatio float64   `csv:"Upvote Ratio" json:"upvote_ratio"`
	ID          string    `csv:"ID" json:"id"`
	Label       Label     `csv:"Is Misinformation" json:"label"`
}

// Detected reports whether the record links to a known misinformation domain.
func (r Record) Detected() bool {
	return r.Label == LabelDetected
}

// Row renders the record in Columns order.
func (r Record) Row() []string {
	created, _ := r.CreatedAt.MarshalText()
	return []string{
		r.Topic,
		r.Subreddit,
		r.Title,
		r.Author,
		r.Text,
		r.URLDomain,
		string(created),
		strconv.Itoa(r.Downvotes),
		strconv.Itoa(r.Upvotes),
		strconv.FormatFloat(r.UpvoteRatio, 'f', -1, 64),
		r.ID,
		string(r.Label),
	}
}

// RecordFromRow builds a Record from a sheet row keyed by header. Missing
// trailing cells are treated as empty. Score columns must be numeric when
// present and the label must be a known value.
func RecordFromRow(header, row []string) (Record, error) {
	get := func(col string) string {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				if i < len(row) {
					return strings.TrimSpace(row[i])
				}
				return ""
			}
		}
		return ""
	}

	rec := Record{
		Topic:     get("Topic"),
		Subreddit: get("Subreddit"),
		Title:     get("Title"),
		Author:    get("Author"),
		Text:      get("Text"),
		URLDomain: get("URL Domain"),
		ID:        get("ID"),
		Label:     Label(get("Is Misinformation")),
	}

	if err := rec.CreatedAt.UnmarshalText([]byte(get("Date Created"))); err != nil {
		return rec, eris.Wrapf(err, "model: record %s", rec.ID)
	}

	var err error
	if rec.Downvotes, err = atoiOrZero(get("Downvotes")); err != nil {
		return rec, eris.Wrapf(err, "model: record %s downvotes", rec.ID)
	}
	if rec.Upvotes, err = atoiOrZero(get("Upvotes")); err != nil {
		return rec, eris.Wrapf(err, "model: record %s upvotes", rec.ID)
	}
	if v := get("Upvote Ratio"); v != "" {
		if rec.UpvoteRatio, err = strconv.ParseFloat(v, 64); err != nil {
			return rec, eris.Wrapf(err, "model: record %s upvote ratio", rec.ID)
		}
	}
	if !rec.Label.Valid() {
		return rec, eris.Errorf("model: record %s has unknown label %q", rec.ID, rec.Label)
	}
	return rec, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	// Sheets can render integers as "12.0" under USER_ENTERED.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), nil
	}
	return strconv.Atoi(s)
}

// ReadRecordsCSV decodes records from a CSV stream whose header uses the
// data sheet column names.
func ReadRecordsCSV(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "model: read csv")
	}
	var records []Record
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "model: decode records csv")
	}
	return records, nil
}

// WriteRecordsCSV encodes records as CSV with a header row.
func WriteRecordsCSV(w io.Writer, records []Record) error {
	data, err := csvutil.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "model: encode records csv")
	}
	_, err = w.Write(data)
	return eris.Wrap(err, "model: write csv")
}
