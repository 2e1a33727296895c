package wisdom

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyIsStableWithinADay(t *testing.T) {
	d, err := NewDaily()
	require.NoError(t, err)

	morning := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	next := time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, d.QuoteFor(morning), d.QuoteFor(evening))
	assert.NotEqual(t, d.QuoteFor(morning), d.QuoteFor(next))
}

func TestDailySuggest(t *testing.T) {
	d, err := NewDaily()
	require.NoError(t, err)
	d.Now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	d.Location = time.UTC

	var s Suggester = d
	got, err := s.Suggest(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, d.QuoteFor(d.Now()).String(), got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Suggest(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadQuotes(t *testing.T) {
	qs, err := loadQuotes([]byte("quotes:\n  - text: \"  hi \"\n  - text: \"\"\n"))
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "hi", qs[0].String())

	_, err = loadQuotes([]byte("quotes: []\n"))
	assert.Error(t, err)
	_, err = loadQuotes([]byte("quotes: ["))
	assert.Error(t, err)
}
