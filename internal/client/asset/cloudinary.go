package asset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/netx"
)

const (
	DefaultCloudinaryBaseURL = "https://api.cloudinary.com"
	DefaultResourceType      = "auto"
)

// CloudinaryUploader posts files to the unsigned upload endpoint
// {base}/v1_1/{cloud}/{resource_type}/upload.
type CloudinaryUploader struct {
	baseURL      string
	cloudName    string
	uploadPreset string
	resourceType string
	httpClient   *http.Client
}

type CloudinaryOption func(*CloudinaryUploader)

// WithBaseURL points the uploader at another host, e.g. a test server.
func WithBaseURL(u string) CloudinaryOption {
	return func(c *CloudinaryUploader) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithResourceType(rt string) CloudinaryOption {
	return func(c *CloudinaryUploader) {
		if rt != "" {
			c.resourceType = rt
		}
	}
}

func WithHTTPClient(hc *http.Client) CloudinaryOption {
	return func(c *CloudinaryUploader) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) CloudinaryOption {
	return func(c *CloudinaryUploader) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

func NewCloudinaryUploader(cloudName, uploadPreset string, opts ...CloudinaryOption) (*CloudinaryUploader, error) {
	if cloudName == "" || uploadPreset == "" {
		return nil, fmt.Errorf("%w: cloud name and upload preset are required", ErrMissingSetting)
	}

	c := &CloudinaryUploader{
		baseURL:      DefaultCloudinaryBaseURL,
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		resourceType: DefaultResourceType,
		httpClient:   &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *CloudinaryUploader) endpoint() string {
	return fmt.Sprintf("%s/v1_1/%s/%s/upload", c.baseURL, c.cloudName, c.resourceType)
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *CloudinaryUploader) Upload(ctx context.Context, f models.PendingFile) (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	resp, err := netx.PostMultipart(ctx, c.httpClient, c.endpoint(),
		map[string]string{"upload_preset": c.uploadPreset},
		netx.MultipartFile{Field: "file", Name: f.Name, Contents: r})
	if err != nil {
		return "", fmt.Errorf("post %s: %w", f.Name, err)
	}
	defer resp.Body.Close()

	if !netx.IsSuccess(resp.StatusCode) {
		body := netx.ReadErrorBody(resp)
		var cr cloudinaryResponse
		if json.Unmarshal(body, &cr) == nil && cr.Error != nil && cr.Error.Message != "" {
			return "", fmt.Errorf("asset host returned %d: %s", resp.StatusCode, cr.Error.Message)
		}
		return "", fmt.Errorf("asset host returned %d", resp.StatusCode)
	}

	var cr cloudinaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if cr.SecureURL == "" {
		return "", ErrNoURL
	}
	return cr.SecureURL, nil
}
