package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/himanishpuri/studiokit/pkg/models"
)

func TestMetadataClientSong(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks/abc123XYZ" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-RapidAPI-Key") != "secret" {
			t.Errorf("Missing api key header")
		}
		w.Write([]byte(`{"id":"abc123XYZ","song_name":"Song","artist":"Band","album_name":"LP","duration":"3m 45s","released":"2020","image":"http://img"}`))
	}))
	defer srv.Close()

	c := NewMetadataClient(srv.URL+"/", WithHeader("X-RapidAPI-Key", "secret"))
	info, err := c.Song(context.Background(), "abc123XYZ")
	if err != nil {
		t.Fatalf("Song failed: %v", err)
	}

	want := models.SongInfo{TrackID: "abc123XYZ", SongName: "Song", Artist: "Band", AlbumName: "LP", Duration: "3m 45s", Released: "2020", ImageURL: "http://img"}
	if info != want {
		t.Errorf("Song = %+v, want %+v", info, want)
	}
}

func TestMetadataClientErrors(t *testing.T) {
	status := http.StatusNotFound
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewMetadataClient(srv.URL)

	_, err := c.Song(context.Background(), "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("404: expected ErrNotFound, got %v", err)
	}

	status = http.StatusBadGateway
	_, err = c.Song(context.Background(), "broken")
	if !errors.Is(err, models.ErrTransport) {
		t.Errorf("502: expected ErrTransport, got %v", err)
	}

	_, err = c.Song(context.Background(), "")
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("empty id: expected ErrInvalidInput, got %v", err)
	}
}

func TestMetadataClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewMetadataClient(url).Song(context.Background(), "abc")
	if !errors.Is(err, models.ErrTransport) {
		t.Errorf("Expected ErrTransport for closed server, got %v", err)
	}
}

func TestLyricsClientQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/api/get" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if q.Get("artist_name") != "Band" || q.Get("track_name") != "Song" || q.Get("album_name") != "LP" || q.Get("duration") != "225" {
			t.Errorf("Unexpected query %v", q)
		}
		w.Write([]byte(`{"id":1,"trackName":"Song","artistName":"Band","plainLyrics":"hello","syncedLyrics":"[00:00.00]hello"}`))
	}))
	defer srv.Close()

	c := NewLyricsClient(srv.URL + "/api")
	lyr, err := c.Lyrics(context.Background(), LyricsQuery{Artist: "Band", Track: "Song", Album: "LP", DurationSeconds: 225})
	if err != nil {
		t.Fatalf("Lyrics failed: %v", err)
	}
	if lyr.Synced != "[00:00.00]hello" || lyr.Plain != "hello" {
		t.Errorf("Unexpected lyrics %+v", lyr)
	}
}

func TestLyricsClientNotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404", http.StatusNotFound, `{"message":"Failed to find specified track"}`},
		{"500", http.StatusInternalServerError, ""},
		{"empty body", http.StatusOK, ""},
		{"no lyrics", http.StatusOK, `{"id":1,"instrumental":true,"plainLyrics":null,"syncedLyrics":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewLyricsClient(srv.URL).Lyrics(context.Background(), LyricsQuery{Artist: "a", Track: "b"})
			if !errors.Is(err, models.ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestLyricsClientOmitsZeroParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("album_name") || q.Has("duration") {
			t.Errorf("Zero-valued params should be omitted: %v", q)
		}
		w.Write([]byte(`{"syncedLyrics":"[00:01.00]x"}`))
	}))
	defer srv.Close()

	if _, err := NewLyricsClient(srv.URL).Lyrics(context.Background(), LyricsQuery{Artist: "a", Track: "b"}); err != nil {
		t.Fatalf("Lyrics failed: %v", err)
	}
}
