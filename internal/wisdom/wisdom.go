// Package wisdom provides short motivational suggestions. The reward core
// never depends on it.
package wisdom

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Suggester turns a prompt into a short piece of advice.
type Suggester interface {
	Suggest(ctx context.Context, prompt string) (string, error)
}

type Quote struct {
	Text   string `yaml:"text"`
	Author string `yaml:"author"`
}

func (q Quote) String() string {
	if q.Author == "" {
		return q.Text
	}
	return fmt.Sprintf("%q — %s", q.Text, q.Author)
}

//go:embed quotes.yaml
var quotesYAML []byte

func loadQuotes(doc []byte) ([]Quote, error) {
	var file struct {
		Quotes []Quote `yaml:"quotes"`
	}
	if err := yaml.Unmarshal(doc, &file); err != nil {
		return nil, fmt.Errorf("parse quotes: %w", err)
	}
	var out []Quote
	for _, q := range file.Quotes {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse quotes: list is empty")
	}
	return out, nil
}

// Daily is the offline Suggester: it ignores the prompt and returns the
// same quote for a whole calendar day.
type Daily struct {
	quotes []Quote

	Now      func() time.Time
	Location *time.Location
}

func NewDaily() (*Daily, error) {
	qs, err := loadQuotes(quotesYAML)
	if err != nil {
		return nil, err
	}
	return &Daily{quotes: qs, Now: time.Now, Location: time.Local}, nil
}

// QuoteFor picks the quote of t's calendar day.
func (d *Daily) QuoteFor(t time.Time) Quote {
	y, m, day := t.Date()
	days := time.Date(y, m, day, 0, 0, 0, 0, time.UTC).Unix() / 86400
	i := days % int64(len(d.quotes))
	return d.quotes[i]
}

func (d *Daily) Suggest(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}
	if d.Location != nil {
		now = now.In(d.Location)
	}
	return d.QuoteFor(now).String(), nil
}
