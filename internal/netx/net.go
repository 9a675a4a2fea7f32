// Package netx holds small HTTP helpers shared by the API client and the
// asset uploaders.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// MultipartFile is the file part of a multipart form.
type MultipartFile struct {
	Field    string
	Name     string
	Contents io.Reader
}

// PostMultipart sends fields and file as multipart/form-data to url and
// returns the response. The caller closes the response body.
func PostMultipart(ctx context.Context, client *http.Client, url string, fields map[string]string, file MultipartFile) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile(file.Field, file.Name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, file.Contents); err != nil {
		return nil, fmt.Errorf("copy %s: %w", file.Name, err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// ReadErrorBody reads at most 4 KiB of a failed response for error messages.
func ReadErrorBody(resp *http.Response) []byte {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return b
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
