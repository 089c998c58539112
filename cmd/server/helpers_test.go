package main

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/supportquote/internal/pricing"
	"github.com/Simplici0/supportquote/internal/refdata"
	"github.com/Simplici0/supportquote/internal/session"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *server {
	t.Helper()
	ds, err := refdata.Defaults()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	calc := pricing.NewCalculator(refdata.NewStore(ds), pricing.DefaultOptions(), zap.NewNop())
	srv := newServer(
		calc,
		session.NewMemoryStore(time.Hour),
		newCookieSigner(testSecret, time.Hour, false),
		pricing.Defaults{Country: "Colombia", RiskLevel: "Low", Margin: 0.64, Mode: pricing.ModeBase},
		zap.NewNop(),
	)
	srv.now = func() time.Time { return time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC) }
	return srv
}

// testClient drives the router and carries the session cookie between calls.
type testClient struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	return &testClient{t: t, h: newTestServer(t).routes()}
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *testClient) send(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rr := httptest.NewRecorder()
	c.h.ServeHTTP(rr, req)
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == sessionCookieName {
			c.cookie = ck
		}
	}
	return rr
}

func (c *testClient) startQuote() quoteView {
	c.t.Helper()
	rr := c.do(http.MethodPost, "/quotes", nil)
	expectStatus(c.t, rr, http.StatusCreated)
	return decodeView(c.t, rr)
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) quoteView {
	t.Helper()
	var v quoteView
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode quote view: %v\n%s", err, rr.Body.String())
	}
	return v
}

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}
