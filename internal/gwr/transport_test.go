package gwr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTransportPost(t *testing.T) {
	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte("<gip><version>1</version><rc>200</rc></gip>"))
	}))
	defer srv.Close()

	tr := newTransportURL(srv.URL, srv.Client())
	resp, err := tr.Post(context.Background(), "cmd=120&data=x&fmt=xml")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp != "<gip><version>1</version><rc>200</rc></gip>" {
		t.Errorf("response = %q", resp)
	}
	if gotBody != "cmd=120&data=x&fmt=xml" {
		t.Errorf("request body = %q", gotBody)
	}
	if gotContentType != "text/xml" {
		t.Errorf("content type = %q, want text/xml", gotContentType)
	}
}

func TestTransportUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	tr := newTransportURL(url, &http.Client{})
	if _, err := tr.Post(context.Background(), "cmd=120&data=x&fmt=xml"); !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("network failure = %v, want ErrGatewayUnavailable", err)
	}
}

func TestTransportHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := newTransportURL(srv.URL, srv.Client())
	if _, err := tr.Post(ctx, "cmd=120&data=x&fmt=xml"); !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("cancelled request = %v, want ErrGatewayUnavailable", err)
	}
}
