package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Upload is the hosted image returned by the CDN.
type Upload struct {
	PublicID string `json:"public_id"`
	URL      string `json:"secure_url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Bytes    int64  `json:"bytes"`
}

// Client uploads product images to the media CDN via multipart form POST and
// rewrites delivery URLs with transformation segments.
type Client struct {
	uploadURL    string
	uploadPreset string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates a media CDN client
func NewClient(uploadURL, uploadPreset string, logger *zap.Logger) *Client {
	return &Client{
		uploadURL:    uploadURL,
		uploadPreset: uploadPreset,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// UploadImage posts the file as multipart form data and returns the hosted
// image.
func (c *Client) UploadImage(ctx context.Context, filename string, file io.Reader) (*Upload, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		defer mw.Close()

		if err := mw.WriteField("upload_preset", c.uploadPreset); err != nil {
			pw.CloseWithError(err)
			return
		}
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Image upload rejected",
			zap.String("filename", filename),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("image host returned HTTP %d", resp.StatusCode)
	}

	var upload Upload
	if err := json.Unmarshal(body, &upload); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	c.logger.Info("Image uploaded",
		zap.String("public_id", upload.PublicID),
		zap.Int64("bytes", upload.Bytes),
	)
	return &upload, nil
}

// TransformOptions select a responsive rendition of an uploaded image.
type TransformOptions struct {
	Width   int
	Height  int
	Quality string // "auto" when empty
}

// TransformURL rewrites a delivery URL with transformation segments, e.g.
// .../upload/w_400,q_auto/v1/img.jpg. URLs without an upload segment are
// returned unchanged.
func TransformURL(rawURL string, opts TransformOptions) string {
	const marker = "/upload/"

	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return rawURL
	}

	segments := []string{}
	if opts.Width > 0 {
		segments = append(segments, fmt.Sprintf("w_%d", opts.Width))
	}
	if opts.Height > 0 {
		segments = append(segments, fmt.Sprintf("h_%d", opts.Height))
	}
	quality := opts.Quality
	if quality == "" {
		quality = "auto"
	}
	segments = append(segments, "q_"+quality)

	return rawURL[:idx+len(marker)] + strings.Join(segments, ",") + "/" + rawURL[idx+len(marker):]
}
