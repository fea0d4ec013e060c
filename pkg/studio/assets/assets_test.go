package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/himanishpuri/studiokit/pkg/models"
)

func TestGiphySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "k" || q.Get("q") != "never gonna give" || q.Get("limit") != "1" {
			t.Errorf("Unexpected query %v", q)
		}
		w.Write([]byte(`{"data":[{"id":"a","images":{"original":{"url":"https://media.example/a.gif"}}},{"id":"b","images":{"original":{"url":""}}}]}`))
	}))
	defer srv.Close()

	urls, err := NewGiphy("k", WithGiphyEndpoint(srv.URL)).Search(context.Background(), "never gonna give")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !reflect.DeepEqual(urls, []string{"https://media.example/a.gif"}) {
		t.Errorf("Search = %v", urls)
	}
}

func TestGiphySearchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewGiphy("bad", WithGiphyEndpoint(srv.URL)).Search(context.Background(), "x")
	if !errors.Is(err, models.ErrTransport) {
		t.Errorf("Expected ErrTransport, got %v", err)
	}
}

func TestResolverBindsAndDegrades(t *testing.T) {
	segments := []models.Segment{
		{Text: "never gonna give you up", StartSeconds: 0, DurationSeconds: 2},
		{Text: "", StartSeconds: 2, DurationSeconds: 1},
		{Text: "boom", StartSeconds: 3, DurationSeconds: 1},
		{Text: "nothing here", StartSeconds: 4, DurationSeconds: 1},
	}

	var queried []string
	s := SearcherFunc(func(ctx context.Context, phrase string) ([]string, error) {
		queried = append(queried, phrase)
		switch phrase {
		case "never gonna give":
			return []string{"u1", "u2"}, nil
		case "boom":
			return nil, models.ErrTransport
		}
		return nil, nil
	})

	var hooked []int
	out := NewResolver(s, nil).Resolve(context.Background(), segments, func(i, total int, b models.BoundSegment) {
		if total != len(segments) {
			t.Errorf("total = %d", total)
		}
		hooked = append(hooked, i)
	})

	if len(out) != len(segments) {
		t.Fatalf("Expected %d bound segments, got %d", len(segments), len(out))
	}
	if out[0].AssetURL != "u1" {
		t.Errorf("First result should be bound, got %q", out[0].AssetURL)
	}
	if out[1].Bound() || out[1].SearchPhrase != "" {
		t.Errorf("Empty-text segment must not be searched: %+v", out[1])
	}
	if out[2].Bound() || out[3].Bound() {
		t.Error("Failed and empty searches must leave segments unbound")
	}
	for i := range segments {
		if out[i].Segment != segments[i] {
			t.Errorf("Segment %d changed: %+v", i, out[i].Segment)
		}
	}
	if !reflect.DeepEqual(queried, []string{"never gonna give", "boom", "nothing here"}) {
		t.Errorf("Searches = %v (one per non-empty segment, in order)", queried)
	}
	if !reflect.DeepEqual(hooked, []int{0, 1, 2, 3}) {
		t.Errorf("Hook calls = %v", hooked)
	}
	if BoundCount(out) != 1 {
		t.Errorf("BoundCount = %d", BoundCount(out))
	}
}

func TestResolverNilSearcher(t *testing.T) {
	out := NewResolver(nil, nil).Resolve(context.Background(), []models.Segment{{Text: "hi", DurationSeconds: 1}}, nil)
	if len(out) != 1 || out[0].Bound() || out[0].SearchPhrase != "hi" {
		t.Errorf("Unexpected result %+v", out)
	}
}
