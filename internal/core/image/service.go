package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	_ "golang.org/x/image/webp" // 支援 WebP
)

// Service 收據圖片處理服務：統一把輸入（URL 或 data URI）
// 轉成 JPEG data URI 再交給辨識服務
type Service struct {
	maxSizeBytes int64
	httpClient   *http.Client
}

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// fetch 取得原始圖片位元組：支援 http(s) URL 與 base64 data URI
func (s *Service) fetch(imageData string) ([]byte, error) {
	if strings.HasPrefix(imageData, "http://") || strings.HasPrefix(imageData, "https://") {
		resp, err := s.httpClient.Get(imageData)
		if err != nil {
			return nil, fmt.Errorf("failed to download image: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to download image: status code %d", resp.StatusCode)
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSizeBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read image data: %w", err)
		}
		return raw, nil
	}

	if !strings.HasPrefix(imageData, "data:image/") {
		return nil, fmt.Errorf("invalid image data format")
	}

	parts := strings.Split(imageData, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid base64 data format")
	}

	raw, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return raw, nil
}

// decode 解碼並檢查大小與格式
func (s *Service) decode(raw []byte) (image.Image, error) {
	if int64(len(raw)) > s.maxSizeBytes {
		return nil, fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if !isSupportedFormat(format) {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}
	return img, nil
}

// ProcessImage 處理收據圖片：下載/解碼後統一轉為 JPEG data URI
func (s *Service) ProcessImage(imageData string) (string, error) {
	raw, err := s.fetch(imageData)
	if err != nil {
		return "", err
	}

	img, err := s.decode(raw)
	if err != nil {
		return "", err
	}

	// 統一轉換為 JPEG 格式
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return fmt.Sprintf("data:image/jpeg;base64,%s", encoded), nil
}

// ValidateImage 驗證收據圖片而不轉碼
func (s *Service) ValidateImage(imageData string) error {
	raw, err := s.fetch(imageData)
	if err != nil {
		return err
	}
	_, err = s.decode(raw)
	return err
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"jpg":  true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
