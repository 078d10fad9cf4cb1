package swarmapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"swarmgen/core"
)

// newTestClient points a Client at an httptest server.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server URL: %v", err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split test server host: %v", err)
	}

	c, err := NewClient(ClientConfig{Host: host, Port: port})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c, srv
}

// sessionHandler answers GetNewSession and ChangeUserSettings, recording
// the settings payload, and delegates everything else.
func sessionHandler(t *testing.T, settings *map[string]any, next http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case endpointNewSession:
			json.NewEncoder(w).Encode(map[string]any{"session_id": "test-session"})
		case endpointChangeUserSettings:
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if settings != nil {
				*settings = body
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		default:
			if next == nil {
				t.Errorf("unexpected request to %s", r.URL.Path)
				http.NotFound(w, r)
				return
			}
			next(w, r)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(ClientConfig{Port: "7801"}); err == nil {
		t.Error("NewClient() without host should fail")
	}
	if _, err := NewClient(ClientConfig{Host: "localhost"}); err == nil {
		t.Error("NewClient() without port should fail")
	}
}

func TestNewSession(t *testing.T) {
	var settings map[string]any
	c, _ := newTestClient(t, sessionHandler(t, &settings, nil))

	id, err := c.NewSession(context.Background())
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	if id != "test-session" {
		t.Errorf("session id = %q, want test-session", id)
	}
	if c.SessionID() != "test-session" {
		t.Errorf("SessionID() = %q, want test-session", c.SessionID())
	}

	if settings == nil {
		t.Fatal("ChangeUserSettings was never called")
	}
	inner, ok := settings["settings"].(map[string]any)
	if !ok {
		t.Fatalf("settings payload missing 'settings' object: %v", settings)
	}
	if inner["fileformat.savemetadata"] != true {
		t.Error("savemetadata setting not requested")
	}
}

func TestGenerateText2Image(t *testing.T) {
	var got map[string]any
	handler := sessionHandler(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != endpointGenerateText2Image {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"images": []string{"View/local/raw/img.png"}})
	})
	c, _ := newTestClient(t, handler)
	if _, err := c.NewSession(context.Background()); err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}

	params := map[string]any{
		"prompt": "a cat",
		"loras":  []any{"detail", "style"},
	}
	ref, err := c.GenerateText2Image(context.Background(), params, GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateText2Image() error: %v", err)
	}
	if ref != "View/local/raw/img.png" {
		t.Errorf("image ref = %q", ref)
	}

	if got["session_id"] != "test-session" {
		t.Error("session_id not injected")
	}
	if got["images"] != float64(1) {
		t.Errorf("images = %v, want 1", got["images"])
	}
	if got["imageformat"] != "PNG" {
		t.Errorf("imageformat = %v, want PNG", got["imageformat"])
	}
	if got["donotsave"] != true {
		t.Error("donotsave not set without SaveOnServer")
	}
	if got["loras"] != "detail,style" {
		t.Errorf("loras = %v, want comma-joined string", got["loras"])
	}
	if _, ok := params["session_id"]; ok {
		t.Error("caller's params map was modified")
	}
}

func TestGenerateSaveOnServer(t *testing.T) {
	var got map[string]any
	handler := sessionHandler(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"images": []string{"x.png"}})
	})
	c, _ := newTestClient(t, handler)
	if _, err := c.NewSession(context.Background()); err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}

	if _, err := c.GenerateText2Image(context.Background(), map[string]any{}, GenerateOptions{SaveOnServer: true}); err != nil {
		t.Fatalf("GenerateText2Image() error: %v", err)
	}
	if _, ok := got["donotsave"]; ok {
		t.Error("donotsave set despite SaveOnServer")
	}
}

func TestErrorClassification(t *testing.T) {
	t.Run("error key in body is a backend error", func(t *testing.T) {
		handler := sessionHandler(t, nil, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"error": "invalid model"})
		})
		c, _ := newTestClient(t, handler)
		if _, err := c.NewSession(context.Background()); err != nil {
			t.Fatalf("NewSession() error: %v", err)
		}

		_, err := c.GenerateText2Image(context.Background(), map[string]any{}, GenerateOptions{})
		if !core.IsBackend(err) {
			t.Errorf("error = %v, want BackendError", err)
		}
		if core.IsFatal(err) {
			t.Error("backend error should not be fatal")
		}
	})

	t.Run("HTTP 500 is a backend error", func(t *testing.T) {
		handler := sessionHandler(t, nil, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		c, _ := newTestClient(t, handler)
		if _, err := c.NewSession(context.Background()); err != nil {
			t.Fatalf("NewSession() error: %v", err)
		}

		_, err := c.GenerateText2Image(context.Background(), map[string]any{}, GenerateOptions{})
		if !core.IsBackend(err) {
			t.Errorf("error = %v, want BackendError", err)
		}
	})

	t.Run("unreachable server is a connectivity error", func(t *testing.T) {
		c, srv := newTestClient(t, http.NotFoundHandler())
		srv.Close()

		_, err := c.NewSession(context.Background())
		if !core.IsConnectivity(err) {
			t.Errorf("error = %v, want ConnectivityError", err)
		}
		if !core.IsFatal(err) {
			t.Error("connectivity error should be fatal")
		}
	})
}

func TestDownloadImage(t *testing.T) {
	want := []byte("fake png bytes")

	t.Run("base64 data URI", func(t *testing.T) {
		c, _ := newTestClient(t, http.NotFoundHandler())
		ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(want)

		got, err := c.DownloadImage(context.Background(), ref)
		if err != nil {
			t.Fatalf("DownloadImage() error: %v", err)
		}
		if string(got) != string(want) {
			t.Errorf("DownloadImage() = %q, want %q", got, want)
		}
	})

	t.Run("relative URL", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/View/local/raw/img.png" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write(want)
		}))

		got, err := c.DownloadImage(context.Background(), "View/local/raw/img.png")
		if err != nil {
			t.Fatalf("DownloadImage() error: %v", err)
		}
		if string(got) != string(want) {
			t.Errorf("DownloadImage() = %q, want %q", got, want)
		}
	})
}

func TestListModels(t *testing.T) {
	handler := sessionHandler(t, nil, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["subtype"] != SubtypeLoRA {
			t.Errorf("subtype = %v, want %s", body["subtype"], SubtypeLoRA)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]any{
				{"name": "detail-lora.safetensors", "title": "Detail"},
			},
		})
	})
	c, _ := newTestClient(t, handler)
	if _, err := c.NewSession(context.Background()); err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}

	models, err := c.ListModels(context.Background(), SubtypeLoRA)
	if err != nil {
		t.Fatalf("ListModels() error: %v", err)
	}
	if len(models) != 1 || models[0].Name != "detail-lora.safetensors" {
		t.Errorf("ListModels() = %+v", models)
	}
}

func TestListLUTs(t *testing.T) {
	handler := sessionHandler(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"list": []map[string]any{
				{"id": "steps", "values": []string{}},
				{"id": "lutname", "values": []string{"kodak.cube", "fuji.cube"}},
			},
		})
	})
	c, _ := newTestClient(t, handler)
	if _, err := c.NewSession(context.Background()); err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}

	luts, err := c.ListLUTs(context.Background())
	if err != nil {
		t.Fatalf("ListLUTs() error: %v", err)
	}
	if len(luts) != 2 || luts[0] != "kodak.cube" {
		t.Errorf("ListLUTs() = %v", luts)
	}
}

func TestSubtypeForType(t *testing.T) {
	tests := []struct{ in, want string }{
		{"base", SubtypeStableDiffusion},
		{"lora", SubtypeLoRA},
		{"vae", SubtypeVAE},
		{"anything", SubtypeStableDiffusion},
	}
	for _, tt := range tests {
		if got := SubtypeForType(tt.in); got != tt.want {
			t.Errorf("SubtypeForType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
