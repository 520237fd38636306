package imageprovider

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/menumaker/menumaker/internal/httpclient"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

// newMockClient returns an httpclient whose requests are served by a fresh mock transport.
func newMockClient(t *testing.T) (*httpclient.Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := httpclient.New(&httpclient.Config{Transport: transport})
	t.Cleanup(client.Close)
	return client, transport
}

func testLogger() logger.Logger {
	return logger.NewSlogLogger(nil, logger.LogLevelError, nil)
}

func testItem(name string) menu.MenuItem {
	return menu.MenuItem{ID: "item-1", Name: name, Description: "Fresh fish, rice", Price: "$9.00"}
}

func jsonResponder(status int, body string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(status, body)
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	}
}

// byQueryParam dispatches on one query parameter. Unknown values get a 404.
func byQueryParam(param string, responders map[string]httpmock.Responder) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		if r, ok := responders[req.URL.Query().Get(param)]; ok {
			return r(req)
		}
		return httpmock.NewStringResponse(http.StatusNotFound, "unexpected "+param), nil
	}
}
