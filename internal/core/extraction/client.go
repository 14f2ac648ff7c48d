package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pantry-keeper/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// Client 收據辨識服務的 OpenRouter 相容客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建辨識服務客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL("https://openrouter.ai/api/v1").
		SetTimeout(cfg.Extraction.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Extraction.APIKey)).
		SetHeader("HTTP-Referer", "https://pantry-keeper.app").
		SetHeader("X-Title", "Pantry Keeper")

	return &Client{
		config: cfg,
		client: client,
	}
}

// GenerateResponse 送出提示與收據圖片，回傳模型的文字回應
func (c *Client) GenerateResponse(ctx context.Context, prompt string, imageData string) (string, error) {
	// 簡化 prompt：去除多餘換行、前後空白，確保請求緊湊
	simplePrompt := strings.TrimSpace(prompt)
	simplePrompt = strings.ReplaceAll(simplePrompt, "\t", "")

	msgContent := []map[string]interface{}{
		{
			"type": "text",
			"text": simplePrompt,
		},
	}
	if imageData != "" {
		url := imageData
		if !strings.HasPrefix(imageData, "data:image/") {
			url = fmt.Sprintf("data:image/jpeg;base64,%s", imageData)
		}
		msgContent = append(msgContent, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]string{
				"url": url,
			},
		})
	}

	// 構建請求
	req := map[string]interface{}{
		"model": c.config.Extraction.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": msgContent,
			},
		},
		"max_tokens": c.config.Extraction.MaxTokens,
	}

	// 發送請求
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to extraction service: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("extraction service returned error: %s", resp.String())
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse extraction response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in extraction response")
	}

	return result.Choices[0].Message.Content, nil
}
