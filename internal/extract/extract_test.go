package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<!doctype html>
<html><body>
<ul class="stream">
  <li class="stream-item"><a class="stream-link" href="/artikel/erste"> Erste Meldung </a></li>
  <li class="stream-item"><a class="stream-link" href="https://news.example.com/artikel/zweite">Zweite Meldung</a></li>
  <li class="stream-item"><a class="stream-link" href="/artikel/dritte">Dritte Meldung</a></li>
</ul>
</body></html>`

func TestListingExtractsInDocumentOrder(t *testing.T) {
	t.Parallel()

	headlines, err := Listing(listingHTML, "li.stream-item", "a.stream-link")
	require.NoError(t, err)
	require.Len(t, headlines, 3)

	assert.Equal(t, "Erste Meldung", headlines[0].Title, "titles should be trimmed")
	assert.Equal(t, "/artikel/erste", headlines[0].Href)
	assert.Equal(t, "https://news.example.com/artikel/zweite", headlines[1].Href)
	assert.Equal(t, "Dritte Meldung", headlines[2].Title)
}

func TestListingIsIdempotent(t *testing.T) {
	t.Parallel()

	first, err := Listing(listingHTML, "li.stream-item", "a.stream-link")
	require.NoError(t, err)
	second, err := Listing(listingHTML, "li.stream-item", "a.stream-link")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListingRejectsMalformedItems(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		html string
	}{
		{
			name: "missing link element",
			html: `<li class="stream-item"><span>kein Link</span></li>`,
		},
		{
			name: "missing href",
			html: `<li class="stream-item"><a class="stream-link">Titel ohne Ziel</a></li>`,
		},
		{
			name: "blank href",
			html: `<li class="stream-item"><a class="stream-link" href="  ">Titel</a></li>`,
		},
		{
			name: "empty title",
			html: `<li class="stream-item"><a class="stream-link" href="/a"> </a></li>`,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// One malformed item fails the whole listing, even when a valid
			// item precedes it.
			html := `<ul><li class="stream-item"><a class="stream-link" href="/ok">OK</a></li>` + tc.html + `</ul>`
			headlines, err := Listing(html, "li.stream-item", "a.stream-link")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidItem), "expected ErrInvalidItem, got %v", err)
			assert.Nil(t, headlines)
		})
	}
}

func TestListingEmptyPage(t *testing.T) {
	t.Parallel()

	headlines, err := Listing("<html><body><p>nichts</p></body></html>", "li.stream-item", "a")
	require.NoError(t, err)
	assert.Empty(t, headlines)
}

func TestFragments(t *testing.T) {
	t.Parallel()

	html := `<article>
<p class="body">Absatz eins.</p>
<aside>Werbung</aside>
<p class="body">Absatz <b>zwei</b>.</p>
</article>`

	fragments, err := Fragments(html, "p.body")
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, `<p class="body">Absatz eins.</p>`, fragments[0])
	assert.Contains(t, fragments[1], "<b>zwei</b>")

	joined := JoinFragments(fragments)
	assert.Equal(t, fragments[0]+"\n"+fragments[1], joined)
}

func TestFragmentsNoMatchIsNotAnError(t *testing.T) {
	t.Parallel()

	fragments, err := Fragments("<html><body></body></html>", "div.article")
	require.NoError(t, err)
	assert.Empty(t, fragments)
}
