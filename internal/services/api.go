// API service for the download backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
)

const defaultBaseURL = "http://127.0.0.1:5000"

// CookieSource supplies the stored cookie string sent with info, download and batch requests.
type CookieSource interface {
	Get(ctx context.Context) (string, error)
}

// BackendError is returned for non-2xx responses and carries the backend's {error} message.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

func (e *BackendError) Unwrap() error {
	return shared.ErrAPIRequest
}

// IsNotFound reports whether err is a [BackendError] with status 404.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.StatusCode == http.StatusNotFound
}

// APIService is the HTTP client for the download backend.
//
// Typed methods decode the backend's JSON into [models] types; Get, Post and Delete return the raw [APIResponse].
type APIService struct {
	baseURL    string
	httpClient *http.Client
	cookies    CookieSource
}

// NewAPIService creates a new API service instance for the backend at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// WithCookies sets the source of the cookie string attached to info, download and batch requests.
func (a *APIService) WithCookies(src CookieSource) *APIService {
	a.cookies = src
	return a
}

// BaseURL returns the backend root without a trailing slash.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.raw(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.raw(ctx, http.MethodPost, path, data)
}

// Delete performs a DELETE request to the specified path and returns the raw response.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.raw(ctx, http.MethodDelete, path, nil)
}

func (a *APIService) raw(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	resp, err := a.send(ctx, method, path, data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

func (a *APIService) send(ctx context.Context, method, path string, data []byte) (*http.Response, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// do sends payload as JSON (when non-nil), checks the status and decodes the body into result (when non-nil).
func (a *APIService) do(ctx context.Context, method, path string, payload, result any) error {
	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, err := a.send(ctx, method, path, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
		}
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp struct {
		Error string `json:"error"`
	}
	be := &BackendError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		be.Message = errResp.Error
	}
	return be
}

func (a *APIService) cookieString(ctx context.Context) string {
	if a.cookies == nil {
		return ""
	}
	c, err := a.cookies.Get(ctx)
	if err != nil {
		return ""
	}
	return c
}

// Info fetches video or playlist metadata.
//
// Calls POST /api/info.
func (a *APIService) Info(ctx context.Context, rawURL string) (*models.MediaInfo, error) {
	payload := map[string]string{"url": rawURL, "cookies": a.cookieString(ctx)}

	var info models.MediaInfo
	if err := a.do(ctx, http.MethodPost, "/api/info", payload, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Download starts a download and returns its task id.
//
// Calls POST /api/download.
func (a *APIService) Download(ctx context.Context, rawURL string, kind models.DownloadType) (string, error) {
	payload := map[string]string{"url": rawURL, "type": string(kind), "cookies": a.cookieString(ctx)}

	var result struct {
		TaskID string `json:"task_id"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/download", payload, &result); err != nil {
		return "", err
	}
	if result.TaskID == "" {
		return "", fmt.Errorf("%w: response has no task_id", shared.ErrDecodeResponse)
	}
	return result.TaskID, nil
}

// Progress fetches the current state of a task.
//
// Calls GET /api/progress/:task_id.
func (a *APIService) Progress(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task
	if err := a.do(ctx, http.MethodGet, "/api/progress/"+url.PathEscape(taskID), nil, &task); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, taskID)
		}
		return nil, err
	}
	if task.ID == "" {
		task.ID = taskID
	}
	return &task, nil
}

// Batch adds urls to the backend queue.
//
// Calls POST /api/batch.
func (a *APIService) Batch(ctx context.Context, urls []string) (*models.BatchResponse, error) {
	payload := map[string]any{"urls": urls, "cookies": a.cookieString(ctx)}

	var result models.BatchResponse
	if err := a.do(ctx, http.MethodPost, "/api/batch", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Queue fetches the full batch queue.
//
// Calls GET /api/queue.
func (a *APIService) Queue(ctx context.Context) (*models.QueueResponse, error) {
	var result models.QueueResponse
	if err := a.do(ctx, http.MethodGet, "/api/queue", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveFromQueue removes a queued item.
//
// Calls DELETE /api/queue/:task_id.
func (a *APIService) RemoveFromQueue(ctx context.Context, taskID string) error {
	return a.do(ctx, http.MethodDelete, "/api/queue/"+url.PathEscape(taskID), nil, nil)
}

// ClearQueue removes finished and failed items from the queue.
//
// Calls POST /api/queue/clear.
func (a *APIService) ClearQueue(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/api/queue/clear", nil, nil)
}

// ListDownloads fetches the library listing.
//
// Calls GET /api/list-downloads.
func (a *APIService) ListDownloads(ctx context.Context) ([]models.FileInfo, error) {
	var files []models.FileInfo
	if err := a.do(ctx, http.MethodGet, "/api/list-downloads", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteFile removes a file from the library.
//
// Calls DELETE /api/delete-file/:filename.
func (a *APIService) DeleteFile(ctx context.Context, filename string) error {
	err := a.do(ctx, http.MethodDelete, "/api/delete-file/"+url.PathEscape(filename), nil, nil)
	if IsNotFound(err) {
		return fmt.Errorf("%w: %s", shared.ErrFileNotFound, filename)
	}
	return err
}

// StreamURL returns the URL an audio element loads to play filename.
func (a *APIService) StreamURL(filename string) string {
	return a.baseURL + "/api/stream/" + url.PathEscape(filename)
}

// DownloadFile streams the result of a single-video task into w and returns the server-suggested filename.
func (a *APIService) DownloadFile(ctx context.Context, taskID string, w io.Writer) (string, error) {
	return a.fetch(ctx, http.MethodGet, "/api/download-file/"+url.PathEscape(taskID), nil, w)
}

// DownloadZip streams the zip of a playlist task into w.
func (a *APIService) DownloadZip(ctx context.Context, taskID string, w io.Writer) (string, error) {
	return a.fetch(ctx, http.MethodGet, "/api/download-zip/"+url.PathEscape(taskID), nil, w)
}

// DownloadExisting streams a library file into w.
func (a *APIService) DownloadExisting(ctx context.Context, filename string, w io.Writer) (string, error) {
	name, err := a.fetch(ctx, http.MethodGet, "/api/download-existing/"+url.PathEscape(filename), nil, w)
	if name == "" {
		name = filename
	}
	return name, err
}

// DownloadMultiple streams a zip of the given library files into w.
//
// Calls POST /api/download-multiple.
func (a *APIService) DownloadMultiple(ctx context.Context, filenames []string, w io.Writer) (string, error) {
	data, err := json.Marshal(map[string][]string{"filenames": filenames})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	return a.fetch(ctx, http.MethodPost, "/api/download-multiple", data, w)
}

func (a *APIService) fetch(ctx context.Context, method, path string, data []byte, w io.Writer) (string, error) {
	resp, err := a.send(ctx, method, path, data)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return attachmentName(resp.Header.Get("Content-Disposition")), nil
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
