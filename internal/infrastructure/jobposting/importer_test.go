package jobposting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync/atomic"
	"testing"
)

const ldPage = `<!doctype html><html><head><title>Careers</title>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"JobPosting","title":"Senior Go Engineer","description":"<p>Build <b>distributed</b> systems.</p>"}</script>
</head><body><h1>Ignored</h1></body></html>`

const plainPage = `<!doctype html><html><head><title>Backend Developer - Acme</title>
<meta name="description" content="short meta">
<style>.x{}</style></head>
<body><nav>Home Jobs</nav>
<main>
<h1>Backend Developer</h1>
<p>You will   design APIs.</p>
<script>var a=1;</script>
</main>
<footer>(c)</footer></body></html>`

func TestParseHTMLPrefersJSONLD(t *testing.T) {
	p, err := ParseHTML(strings.NewReader(ldPage), "https://example.com/jobs/1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Title != "Senior Go Engineer" {
		t.Fatalf("unexpected title %q", p.Title)
	}
	if p.Description != "Build distributed systems." {
		t.Fatalf("unexpected description %q", p.Description)
	}
}

func TestParseHTMLFallsBackToPageText(t *testing.T) {
	p, err := ParseHTML(strings.NewReader(plainPage), "u")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Title != "Backend Developer" {
		t.Fatalf("unexpected title %q", p.Title)
	}
	if p.Description != "Backend Developer You will design APIs." {
		t.Fatalf("unexpected description %q", p.Description)
	}
}

func TestParseHTMLEmptyPage(t *testing.T) {
	if _, err := ParseHTML(strings.NewReader("<html><body></body></html>"), "u"); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestImportFetchesWithCollector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(ldPage))
	}))
	defer srv.Close()

	x := NewExtractor(false, nil)
	x.allowPrivate = true
	p, err := x.Import(context.Background(), srv.URL+"/jobs/1")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if p.Title != "Senior Go Engineer" || p.URL != srv.URL+"/jobs/1" {
		t.Fatalf("unexpected posting %+v", p)
	}
}

func TestImportRejectsBadURLs(t *testing.T) {
	x := NewExtractor(false, nil)
	for _, raw := range []string{"", "ftp://example.com/x", "not a url", "/relative"} {
		if _, err := x.Import(context.Background(), raw); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("%q: expected ErrInvalidURL, got %v", raw, err)
		}
	}
}

func TestImportRefusesInternalHosts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>internal-admin</title></head><body><p>db_password=hunter2</p></body></html>`))
	}))
	defer srv.Close()

	x := NewExtractor(false, nil)
	for _, raw := range []string{
		srv.URL + "/admin",
		"http://localhost:1/",
		"http://169.254.169.254/latest/meta-data/",
		"http://10.0.0.5/",
		"http://[::1]:8080/",
		"http://0.0.0.0/",
	} {
		if _, err := x.Import(context.Background(), raw); !errors.Is(err, ErrBlockedHost) {
			t.Fatalf("%q: expected ErrBlockedHost, got %v", raw, err)
		}
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("expected no request to reach the internal server, got %d", n)
	}
}

func TestGuardDialRejectsBlockedAddresses(t *testing.T) {
	for _, addr := range []string{"127.0.0.1:80", "192.168.1.10:443", "[fe80::1]:80", "100.64.1.1:80"} {
		if err := guardDial("tcp", addr, nil); !errors.Is(err, ErrBlockedHost) {
			t.Fatalf("%s: expected ErrBlockedHost, got %v", addr, err)
		}
	}
	if err := guardDial("tcp", "93.184.216.34:443", nil); err != nil {
		t.Fatalf("expected public address to pass, got %v", err)
	}
	if !blockedAddr(netip.MustParseAddr("::ffff:127.0.0.1")) {
		t.Fatalf("expected mapped loopback to be blocked")
	}
}

func TestParseHTMLSeparatesBlocks(t *testing.T) {
	page := `<html><body><main><div>Responsibilities</div><ul><li>Design APIs</li><li>Own on-call</li></ul><p>Apply now</p></main></body></html>`
	p, err := ParseHTML(strings.NewReader(page), "u")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Description != "Responsibilities Design APIs Own on-call Apply now" {
		t.Fatalf("unexpected description %q", p.Description)
	}
}
