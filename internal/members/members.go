// Package members resolves surnames seen in feeds to full member names so
// the review loop can show who a truncated or initial-only payee actually
// is.
package members

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hwhitmarsh/beacon-reconcile/internal/score"
)

// Directory maps surnames to the full member names carrying them.
type Directory struct {
	bySurname map[string][]string
}

// ReadCSV loads a membership export with one full name per row in the first
// column. A header row starting with "name" is skipped.
func ReadCSV(r io.Reader) (*Directory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read members CSV: %w", err)
	}

	d := &Directory{bySurname: make(map[string][]string)}
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" || (i == 0 && strings.EqualFold(name, "name")) {
			continue
		}
		d.add(name)
	}

	slog.Info("member directory loaded", "members", d.Len())
	return d, nil
}

func (d *Directory) add(fullName string) {
	tokens := score.SurnameTokens(fullName)
	if len(tokens) == 0 {
		return
	}
	// The last usable token of a full name is the surname.
	surname := tokens[len(tokens)-1]
	d.bySurname[surname] = append(d.bySurname[surname], fullName)
}

// Len returns the number of distinct surnames in the directory.
func (d *Directory) Len() int {
	return len(d.bySurname)
}

// Resolve returns the full names matching any surname token in the given
// text, or nil when nothing matches.
func (d *Directory) Resolve(text string) []string {
	var names []string
	for _, token := range score.SurnameTokens(text) {
		names = append(names, d.bySurname[token]...)
	}
	return names
}

// DisplayName annotates payee text with resolved member names when a
// surname is recognised; otherwise the text passes through unchanged.
func (d *Directory) DisplayName(text string) string {
	names := d.Resolve(text)
	if len(names) == 0 {
		return text
	}
	return fmt.Sprintf("%s (%s)", text, strings.Join(names, ", "))
}
