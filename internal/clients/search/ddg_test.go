package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<html><body>
<div class="result results_links web-result">
  <h2 class="result__title"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.snopes.com%2Ffact-check%2Fflat-earth%2F&rut=abc">Is the Earth flat?</a></h2>
  <a class="result__snippet">This claim is false according to every measurement.</a>
</div>
<div class="result result--ad">
  <a class="result__a" href="https://ads.example.com">Sponsored</a>
</div>
<div class="result">
  <a class="result__a" href="https://factuel.afp.com/terre">La Terre est ronde</a>
  <div class="result__snippet">Faux : la Terre n'est pas plate.</div>
</div>
<div class="result">
  <a class="result__a" href="/relative">Lien relatif</a>
</div>
</body></html>`

func TestParseDDGHTML(t *testing.T) {
	results, err := parseDDGHTML(strings.NewReader(sampleHTML))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://www.snopes.com/fact-check/flat-earth/", results[0].Href)
	assert.Equal(t, "Is the Earth flat?", results[0].Title)
	assert.Equal(t, "This claim is false according to every measurement.", results[0].Body)
	assert.Equal(t, "https://factuel.afp.com/terre", results[1].Href)
}

func TestDDGUnwrapURL(t *testing.T) {
	assert.Equal(t, "https://a.fr/x", ddgUnwrapURL("//duckduckgo.com/l/?uddg=https%3A%2F%2Fa.fr%2Fx"))
	assert.Equal(t, "http://b.fr", ddgUnwrapURL("http://b.fr"))
	assert.Equal(t, "", ddgUnwrapURL("/local"))
}

func TestDDGClient_Text(t *testing.T) {
	var form string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		form = r.PostForm.Get("q") + "|" + r.PostForm.Get("kl")
		_, _ = w.Write([]byte(sampleHTML))
	}))
	defer srv.Close()

	c := NewDDGClient(config.SearchConfig{Endpoint: srv.URL, Region: "fr-fr"}, logger.NewNop(), srv.Client())
	results, err := c.Text(context.Background(), "La Terre est plate site:snopes.com", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "La Terre est plate site:snopes.com|fr-fr", form)
}

func TestDDGClient_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewDDGClient(config.SearchConfig{Endpoint: srv.URL}, nil, srv.Client())
	_, err := c.Text(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchStatus))
}

func TestDDGClient_ZeroMax(t *testing.T) {
	c := NewDDGClient(config.SearchConfig{Endpoint: "http://127.0.0.1:1"}, nil, nil)
	results, err := c.Text(context.Background(), "q", 0)
	assert.NoError(t, err)
	assert.Empty(t, results)
}
