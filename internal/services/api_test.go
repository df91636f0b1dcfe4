package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
	tu "github.com/desertthunder/downyt/internal/testing"
)

type staticCookies string

func (s staticCookies) Get(context.Context) (string, error) { return string(s), nil }

func newBackend(t *testing.T, h http.HandlerFunc) *APIService {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewAPIService(server.URL, nil)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	return body
}

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.BaseURL() != "http://example.com" {
				t.Errorf("expected trailing slash to be trimmed, got %s", srv.BaseURL())
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Defaults", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != defaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", defaultBaseURL, srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Raw Requests", func(t *testing.T) {
		t.Run("Get With JSON Response", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/api/queue" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.Header().Set("X-Custom-Header", "test-value")
				w.Write([]byte(`{"queue_size": 0}`))
			})

			resp, err := srv.Get(context.Background(), "/api/queue")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
			if resp.Headers.Get("X-Custom-Header") != "test-value" {
				t.Errorf("expected custom header, got %s", resp.Headers.Get("X-Custom-Header"))
			}
		})

		t.Run("Post Sends JSON Content Type", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
				}
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("not json"))
			})

			resp, err := srv.Post(context.Background(), "/api/info", []byte(`{}`))
			if err != nil {
				t.Fatalf("raw requests should not fail on status codes: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", resp.StatusCode)
			}
			if resp.IsJSON || resp.JSONData != nil {
				t.Error("expected response to not be JSON")
			}
		})

		t.Run("Delete", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE, got %s", r.Method)
				}
				w.Write([]byte(`{"message":"ok"}`))
			})

			if _, err := srv.Delete(context.Background(), "/api/queue/abc"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Get(context.Background(), "/test\x00invalid")

			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Post(context.Background(), "/test", []byte("data"))

			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := srv.Get(ctx, "/test"); err == nil {
				t.Error("expected error for canceled context")
			}
		})
	})

	t.Run("Info", func(t *testing.T) {
		t.Run("Sends URL And Cookies", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/info" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				body := decodeBody(t, r)
				if body["url"] != "https://youtube.com/playlist?list=PL1" {
					t.Errorf("unexpected url %v", body["url"])
				}
				if body["cookies"] != "SID=abc" {
					t.Errorf("expected cookies to be sent, got %v", body["cookies"])
				}
				w.Write([]byte(`{"type":"playlist","title":"Mix","count":3,"videos":[{"id":"a","title":"A"},{"id":"b","title":"B"},{"id":"c","title":"C"}]}`))
			}).WithCookies(staticCookies("SID=abc"))

			info, err := srv.Info(context.Background(), "https://youtube.com/playlist?list=PL1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if info.Type != models.TypePlaylist || info.Count != 3 || len(info.Videos) != 3 {
				t.Errorf("unexpected info %+v", info)
			}
		})

		t.Run("Empty Cookies Without Source", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if body := decodeBody(t, r); body["cookies"] != "" {
					t.Errorf("expected empty cookies, got %v", body["cookies"])
				}
				w.Write([]byte(`{"type":"video","title":"Song","duration":215}`))
			})

			info, err := srv.Info(context.Background(), "https://youtu.be/x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if info.Duration != 215 {
				t.Errorf("expected duration 215, got %v", info.Duration)
			}
		})

		t.Run("Backend Error Message", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"URL inválida"}`))
			})

			_, err := srv.Info(context.Background(), "https://example.com")

			var be *BackendError
			if !errors.As(err, &be) {
				t.Fatalf("expected BackendError, got %v", err)
			}
			if be.StatusCode != http.StatusBadRequest || be.Message != "URL inválida" {
				t.Errorf("unexpected backend error %+v", be)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected BackendError to unwrap to ErrAPIRequest")
			}
		})
	})

	t.Run("Download", func(t *testing.T) {
		t.Run("Returns Task ID", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if body := decodeBody(t, r); body["type"] != "video" {
					t.Errorf("expected type video, got %v", body["type"])
				}
				w.Write([]byte(`{"task_id":"t-1"}`))
			})

			id, err := srv.Download(context.Background(), "https://youtu.be/x", models.TypeVideo)
			if err != nil || id != "t-1" {
				t.Errorf("Download() = %q, %v", id, err)
			}
		})

		t.Run("Missing Task ID", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			})

			_, err := srv.Download(context.Background(), "https://youtu.be/x", models.TypeVideo)
			if !errors.Is(err, shared.ErrDecodeResponse) {
				t.Errorf("expected ErrDecodeResponse, got %v", err)
			}
		})
	})

	t.Run("Progress", func(t *testing.T) {
		t.Run("Decodes Task", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/progress/t-1" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(`{"status":"processing","progress":42.4,"current_video":"Song B","current_index":2,"total":3}`))
			})

			task, err := srv.Progress(context.Background(), "t-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if task.ID != "t-1" || task.Status != models.StatusProcessing || task.CurrentIndex != 2 {
				t.Errorf("unexpected task %+v", task)
			}
		})

		t.Run("Unknown Task", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":"Task não encontrada"}`))
			})

			_, err := srv.Progress(context.Background(), "nope")
			if !errors.Is(err, shared.ErrTaskNotFound) {
				t.Errorf("expected ErrTaskNotFound, got %v", err)
			}
		})

		t.Run("Malformed Body", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			})

			_, err := srv.Progress(context.Background(), "t-1")
			if !errors.Is(err, shared.ErrDecodeResponse) {
				t.Errorf("expected ErrDecodeResponse, got %v", err)
			}
		})
	})

	t.Run("Queue Operations", func(t *testing.T) {
		var calls []string
		srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, r.Method+" "+r.URL.Path)
			switch r.URL.Path {
			case "/api/batch":
				body := decodeBody(t, r)
				if urls, _ := body["urls"].([]any); len(urls) != 2 {
					t.Errorf("expected 2 urls, got %v", body["urls"])
				}
				w.Write([]byte(`{"message":"2 itens adicionados à fila","items":[{"task_id":"a","status":"queued"},{"task_id":"b","status":"queued"}]}`))
			case "/api/queue":
				w.Write([]byte(`{"queue_size":1,"total_items":2,"items":[{"task_id":"a","title":"A","type":"video","status":"processing"},{"task_id":"b","title":"B","type":"playlist","status":"queued"}]}`))
			default:
				w.Write([]byte(`{"message":"ok"}`))
			}
		})
		ctx := context.Background()

		batch, err := srv.Batch(ctx, []string{"https://youtu.be/a", "https://youtu.be/b"})
		if err != nil || len(batch.Items) != 2 {
			t.Fatalf("Batch() = %+v, %v", batch, err)
		}

		queue, err := srv.Queue(ctx)
		if err != nil {
			t.Fatalf("Queue() error = %v", err)
		}
		if queue.TotalItems != 2 || queue.Items[1].Type != models.TypePlaylist {
			t.Errorf("unexpected queue %+v", queue)
		}

		if err := srv.RemoveFromQueue(ctx, "b"); err != nil {
			t.Errorf("RemoveFromQueue() error = %v", err)
		}
		if err := srv.ClearQueue(ctx); err != nil {
			t.Errorf("ClearQueue() error = %v", err)
		}

		want := []string{"POST /api/batch", "GET /api/queue", "DELETE /api/queue/b", "POST /api/queue/clear"}
		if strings.Join(calls, ",") != strings.Join(want, ",") {
			t.Errorf("calls = %v, want %v", calls, want)
		}
	})

	t.Run("Library", func(t *testing.T) {
		t.Run("ListDownloads", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"name":"a.mp3","size":1024,"modified":1700000000.5,"duration":61,"artist":"X"}]`))
			})

			files, err := srv.ListDownloads(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(files) != 1 || files[0].Modified != 1700000000.5 || files[0].Artist != "X" {
				t.Errorf("unexpected files %+v", files)
			}
		})

		t.Run("DeleteFile Escapes Name", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.EscapedPath() != "/api/delete-file/My%20Song%20%231.mp3" {
					t.Errorf("unexpected path %s", r.URL.EscapedPath())
				}
				w.Write([]byte(`{"message":"ok"}`))
			})

			if err := srv.DeleteFile(context.Background(), "My Song #1.mp3"); err != nil {
				t.Errorf("DeleteFile() error = %v", err)
			}
		})

		t.Run("DeleteFile Missing", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})

			err := srv.DeleteFile(context.Background(), "gone.mp3")
			if !errors.Is(err, shared.ErrFileNotFound) {
				t.Errorf("expected ErrFileNotFound, got %v", err)
			}
		})

		t.Run("DownloadMultiple Streams Zip", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if string(body) != `{"filenames":["a.mp3","b.mp3"]}` {
					t.Errorf("unexpected body %s", body)
				}
				w.Header().Set("Content-Disposition", `attachment; filename="musicas_selecionadas.zip"`)
				w.Write([]byte("PK\x03\x04"))
			})

			var buf bytes.Buffer
			name, err := srv.DownloadMultiple(context.Background(), []string{"a.mp3", "b.mp3"}, &buf)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if name != "musicas_selecionadas.zip" {
				t.Errorf("expected attachment name, got %q", name)
			}
			if buf.String() != "PK\x03\x04" {
				t.Errorf("unexpected content %q", buf.String())
			}
		})

		t.Run("DownloadExisting Falls Back To Filename", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ID3"))
			})

			var buf bytes.Buffer
			name, err := srv.DownloadExisting(context.Background(), "a.mp3", &buf)
			if err != nil || name != "a.mp3" {
				t.Errorf("DownloadExisting() = %q, %v", name, err)
			}
		})

		t.Run("DownloadFile Error", func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"Download não concluído"}`))
			})

			var buf bytes.Buffer
			_, err := srv.DownloadFile(context.Background(), "t-1", &buf)
			var be *BackendError
			if !errors.As(err, &be) || be.Message != "Download não concluído" {
				t.Errorf("expected backend error message, got %v", err)
			}
			if buf.Len() != 0 {
				t.Error("error body should not be written to the output")
			}
		})
	})

	t.Run("Stream URL", func(t *testing.T) {
		srv := NewAPIService("http://backend:5000", nil)

		if got := srv.StreamURL("A B.mp3"); got != "http://backend:5000/api/stream/A%20B.mp3" {
			t.Errorf("StreamURL() = %s", got)
		}
	})
}
