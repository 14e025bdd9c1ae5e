package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

const defaultBaseURL = "https://api.uploadthing.com"

// ErrNotConfigured is returned when no UploadThing token is set.
var ErrNotConfigured = errors.New("uploads: no api token configured")

// ClientConfig configures the UploadThing API.
type ClientConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// File is an upload ready to be sent to the file host.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Uploaded describes a stored file.
type Uploaded struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Size int    `json:"size"`
	URL  string `json:"url"`
}

// Client stores files on UploadThing using presigned POST uploads.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates an UploadThing client
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.WithComponent("uploads"),
	}
}

type presignRequest struct {
	Files              []presignFile `json:"files"`
	ACL                string        `json:"acl"`
	ContentDisposition string        `json:"contentDisposition"`
}

type presignFile struct {
	Name     string `json:"name"`
	Size     int    `json:"size"`
	Type     string `json:"type"`
	CustomID string `json:"customId,omitempty"`
}

type presignResponse struct {
	Data []struct {
		Key     string            `json:"key"`
		URL     string            `json:"url"`
		Fields  map[string]string `json:"fields"`
		FileURL string            `json:"fileUrl"`
	} `json:"data"`
}

// Upload presigns one file for the slot, posts it and returns its public URL
func (c *Client) Upload(ctx context.Context, slot Slot, f File) (*Uploaded, error) {
	if c.cfg.Token == "" {
		return nil, ErrNotConfigured
	}

	name := FileKey(slot, f.Name)
	presigned, err := c.presign(ctx, presignRequest{
		Files:              []presignFile{{Name: name, Size: len(f.Data), Type: f.ContentType}},
		ACL:                "public-read",
		ContentDisposition: "inline",
	})
	if err != nil {
		return nil, err
	}
	if len(presigned.Data) == 0 {
		return nil, errors.New("uploadthing: empty presign response")
	}
	target := presigned.Data[0]

	if err := c.postFile(ctx, target.URL, target.Fields, name, f); err != nil {
		return nil, err
	}

	c.log.Info().
		Str("slot", string(slot)).
		Str("key", target.Key).
		Int("size", len(f.Data)).
		Msg("file uploaded")

	return &Uploaded{Key: target.Key, Name: name, Size: len(f.Data), URL: target.FileURL}, nil
}

func (c *Client) presign(ctx context.Context, body presignRequest) (*presignResponse, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal presign request: %w", err)
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v6/uploadFiles"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Uploadthing-Api-Key", c.cfg.Token)

	data, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("uploadthing presign: %w", err)
	}

	var out presignResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode presign response: %w", err)
	}
	return &out, nil
}

// postFile sends the presigned form fields followed by the file part.
func (c *Client) postFile(ctx context.Context, url string, fields map[string]string, name string, f File) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if f.ContentType != "" {
		if err := mw.WriteField("Content-Type", f.ContentType); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := part.Write(f.Data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("uploadthing file post: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(data)
		if len(msg) > 256 {
			msg = msg[:256] + "..."
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return data, nil
}

// FileKey builds a unique, URL-safe object name from the slot and the
// client's filename, keeping the extension.
func FileKey(slot Slot, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := slug.Make(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s-%s-%s%s", slot, base, uuid.NewString()[:8], ext)
}
