package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUploadImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "shop-products", r.FormValue("upload_preset"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "bible.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"public_id": "shop/bible",
			"secure_url": "https://cdn.example.com/image/upload/v1/shop/bible.jpg",
			"width": 800,
			"height": 600,
			"format": "jpg",
			"bytes": 12345
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "shop-products", zap.NewNop())
	upload, err := client.UploadImage(context.Background(), "bible.jpg", strings.NewReader("fake-image-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "shop/bible", upload.PublicID)
	assert.Equal(t, 800, upload.Width)
}

func TestUploadImage_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid preset"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-preset", zap.NewNop())
	_, err := client.UploadImage(context.Background(), "x.jpg", strings.NewReader("data"))
	assert.Error(t, err)
}

func TestTransformURL(t *testing.T) {
	url := "https://cdn.example.com/image/upload/v1/shop/bible.jpg"

	tests := []struct {
		name string
		opts TransformOptions
		want string
	}{
		{
			name: "width with auto quality",
			opts: TransformOptions{Width: 400},
			want: "https://cdn.example.com/image/upload/w_400,q_auto/v1/shop/bible.jpg",
		},
		{
			name: "width height and explicit quality",
			opts: TransformOptions{Width: 400, Height: 300, Quality: "80"},
			want: "https://cdn.example.com/image/upload/w_400,h_300,q_80/v1/shop/bible.jpg",
		},
		{
			name: "no dimensions still gets quality",
			opts: TransformOptions{},
			want: "https://cdn.example.com/image/upload/q_auto/v1/shop/bible.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransformURL(url, tt.opts))
		})
	}
}

func TestTransformURL_NonCDNURLUnchanged(t *testing.T) {
	url := "https://example.com/static/logo.png"
	assert.Equal(t, url, TransformURL(url, TransformOptions{Width: 100}))
}
