package cms

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StorageUploader stores image references in the CMS storage bucket, producing
// durable public URLs. It implements images.Uploader; callers treat failures
// as soft and keep the source reference.
type StorageUploader struct {
	baseURL    string
	apiKey     string
	bucket     string
	httpClient *http.Client
}

// NewStorageUploader builds an uploader for the given bucket.
func NewStorageUploader(baseURL, apiKey, bucket string) *StorageUploader {
	if bucket == "" {
		bucket = "article-images"
	}
	return &StorageUploader{
		baseURL:    baseURL,
		apiKey:     apiKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Upload resolves ref to image bytes (data URI or fetchable URL), writes them
// to the bucket under path, and returns the public URL.
func (u *StorageUploader) Upload(ctx context.Context, ref, path string) (string, error) {
	data, mime, err := u.resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to read image source: %w", err)
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", u.baseURL, u.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mime)
	req.Header.Set("apikey", u.apiKey)
	req.Header.Set("Authorization", "Bearer "+u.apiKey)
	req.Header.Set("x-upsert", "true")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("storage returned %s: %s", resp.Status, detail)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", u.baseURL, u.bucket, path), nil
}

// resolve turns a reference into raw bytes: data URIs are decoded in place,
// anything else is fetched over HTTP.
func (u *StorageUploader) resolve(ctx context.Context, ref string) ([]byte, string, error) {
	if strings.HasPrefix(ref, "data:") {
		rest := strings.TrimPrefix(ref, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("unsupported data URI encoding")
		}
		mime := rest[:semi]
		data, err := base64.StdEncoding.DecodeString(rest[semi+len(";base64,"):])
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
		}
		return data, mime, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("source fetch returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return data, mime, nil
}
