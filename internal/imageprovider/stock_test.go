package imageprovider

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumaker/menumaker/internal/errors"
)

const flickrURL = "https://api.flickr.com/services/rest/"

func flickrBody(ids ...string) string {
	photos := ""
	for i, id := range ids {
		if i > 0 {
			photos += ","
		}
		photos += fmt.Sprintf(`{"id":"%s","owner":"o","secret":"s%s","server":"65535","farm":66,"title":"Tasty &amp; fresh %s"}`, id, id, id)
	}
	return `{"photos":{"page":1,"pages":1,"perpage":5,"total":1,"photo":[` + photos + `]},"stat":"ok"}`
}

func TestFlickrReturnsFirstResult(t *testing.T) {
	client, transport := newMockClient(t)

	var query map[string]string
	transport.RegisterResponder(http.MethodGet, flickrURL, func(req *http.Request) (*http.Response, error) {
		query = map[string]string{}
		for k, v := range req.URL.Query() {
			query[k] = v[0]
		}
		return httpmock.NewStringResponse(http.StatusOK, flickrBody("101", "102")), nil
	})

	p := NewFlickrProvider(Options{APIKey: "flickr-key", HTTPClient: client, Logger: testLogger()})
	url, err := p.Fetch(t.Context(), testItem("Salmon Nigiri"))
	require.NoError(t, err)

	assert.Equal(t, "https://live.staticflickr.com/65535/101_s101_c.jpg", url)
	assert.Equal(t, "flickr.photos.search", query["method"])
	assert.Equal(t, "Salmon Nigiri food", query["text"])
	assert.Equal(t, "4,5,6,7,8,9,10", query["license"])
	assert.Equal(t, "relevance", query["sort"])
	assert.Equal(t, "5", query["per_page"])
	assert.Equal(t, "1", query["nojsoncallback"])
	assert.Equal(t, "1", query["safe_search"])
	assert.Equal(t, "1", query["content_type"])
	assert.Equal(t, "flickr-key", query["api_key"])
}

func TestFlickrFallsBackToGenericSearch(t *testing.T) {
	client, transport := newMockClient(t)

	transport.RegisterResponder(http.MethodGet, flickrURL, byQueryParam("text", map[string]httpmock.Responder{
		"Unobtainium Stew food": jsonResponder(http.StatusOK, flickrBody()),
		"food dish":             jsonResponder(http.StatusOK, flickrBody("900")),
	}))

	p := NewFlickrProvider(Options{APIKey: "k", HTTPClient: client, Logger: testLogger()})
	url, err := p.Fetch(t.Context(), testItem("Unobtainium Stew"))
	require.NoError(t, err)
	assert.Equal(t, "https://live.staticflickr.com/65535/900_s900_c.jpg", url)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestFlickrFailsWhenFallbackEmpty(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, flickrURL, jsonResponder(http.StatusOK, flickrBody()))

	p := NewFlickrProvider(Options{APIKey: "k", HTTPClient: client, Logger: testLogger()})
	_, err := p.Fetch(t.Context(), testItem("Nothing"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryImageFetch))
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestFlickrStatFailIsError(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, flickrURL,
		jsonResponder(http.StatusOK, `{"stat":"fail","code":100,"message":"Invalid API Key"}`))

	p := NewFlickrProvider(Options{APIKey: "bad", HTTPClient: client, Logger: testLogger()})
	_, err := p.Fetch(t.Context(), testItem("Ramen"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API Key")
}

const pexelsURL = "https://api.pexels.com/v1/search"

func pexelsBody(n int) string {
	photos := ""
	for i := range n {
		if i > 0 {
			photos += ","
		}
		photos += fmt.Sprintf(`{"id":%d,"src":{"original":"o%d","medium":"https://images.pexels.com/%d-medium.jpg"}}`, i, i, i)
	}
	return fmt.Sprintf(`{"page":1,"per_page":15,"total_results":%d,"photos":[%s]}`, n, photos)
}

func TestPexelsPicksAmongTopFive(t *testing.T) {
	client, transport := newMockClient(t)

	var auth string
	var query map[string][]string
	transport.RegisterResponder(http.MethodGet, pexelsURL, func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		query = req.URL.Query()
		return httpmock.NewStringResponse(http.StatusOK, pexelsBody(12)), nil
	})

	p := NewPexelsProvider(Options{APIKey: "pexels-key", HTTPClient: client, Logger: testLogger()})
	var bound int
	p.pick = func(n int) int {
		bound = n
		return n - 1
	}

	url, err := p.Fetch(t.Context(), testItem("Tonkotsu Ramen"))
	require.NoError(t, err)

	assert.Equal(t, 5, bound)
	assert.Equal(t, "https://images.pexels.com/4-medium.jpg", url)
	assert.Equal(t, "pexels-key", auth)
	assert.Equal(t, "Tonkotsu Ramen food dish meal", query["query"][0])
	assert.Equal(t, "15", query["per_page"][0])
	assert.Equal(t, "landscape", query["orientation"][0])
}

func TestPexelsFewerThanFiveResults(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, pexelsURL, jsonResponder(http.StatusOK, pexelsBody(2)))

	p := NewPexelsProvider(Options{APIKey: "k", HTTPClient: client, Logger: testLogger()})
	var bound int
	p.pick = func(n int) int { bound = n; return 0 }

	_, err := p.Fetch(t.Context(), testItem("Gyoza"))
	require.NoError(t, err)
	assert.Equal(t, 2, bound)
}

func TestPexelsFallbackPicksAmongAll(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, pexelsURL, byQueryParam("query", map[string]httpmock.Responder{
		"Dragon Fruit Foam food dish meal": jsonResponder(http.StatusOK, pexelsBody(0)),
		"food":                             jsonResponder(http.StatusOK, pexelsBody(9)),
	}))

	p := NewPexelsProvider(Options{APIKey: "k", HTTPClient: client, Logger: testLogger()})
	var bound int
	p.pick = func(n int) int { bound = n; return 7 }

	url, err := p.Fetch(t.Context(), testItem("Dragon Fruit Foam"))
	require.NoError(t, err)
	assert.Equal(t, 9, bound)
	assert.Equal(t, "https://images.pexels.com/7-medium.jpg", url)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestPexelsNon2xxIsError(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, pexelsURL, jsonResponder(http.StatusUnauthorized, `{"error":"bad key"}`))

	p := NewPexelsProvider(Options{APIKey: "k", HTTPClient: client, Logger: testLogger()})
	_, err := p.Fetch(t.Context(), testItem("Udon"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFoodishReturnsImage(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, "https://foodish-api.com/api/",
		jsonResponder(http.StatusOK, `{"image":"https://foodish-api.com/images/biryani/biryani12.jpg"}`))

	p := NewFoodishProvider(Options{HTTPClient: client, Logger: testLogger()})
	url, err := p.Fetch(t.Context(), testItem("Anything"))
	require.NoError(t, err)
	assert.Equal(t, "https://foodish-api.com/images/biryani/biryani12.jpg", url)
}

func TestFoodishMissingImageIsError(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, "https://foodish-api.com/api/", jsonResponder(http.StatusOK, `{}`))

	p := NewFoodishProvider(Options{HTTPClient: client, Logger: testLogger()})
	_, err := p.Fetch(t.Context(), testItem("Anything"))
	require.Error(t, err)
}
