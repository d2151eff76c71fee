package util

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scamwall/config"
)

// WebhookClient webhook客户端
type WebhookClient struct {
	Client *http.Client
}

// NewWebhookClient 创建webhook客户端
func NewWebhookClient() *WebhookClient {
	return &WebhookClient{
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ExecuteWebhooks 依次执行一组webhook，返回各自的失败
func (wc *WebhookClient) ExecuteWebhooks(webhooks []config.WebhookConfig, data map[string]interface{}) []error {
	var errs []error
	for _, webhook := range webhooks {
		if err := wc.ExecuteWebhook(webhook, data); err != nil {
			errs = append(errs, fmt.Errorf("webhook %s: %w", webhook.Name, err))
		}
	}
	return errs
}

// ExecuteWebhook 执行单个webhook请求
func (wc *WebhookClient) ExecuteWebhook(webhook config.WebhookConfig, data map[string]interface{}) error {
	if webhook.URL == "" {
		return fmt.Errorf("webhook URL is empty")
	}

	targetURL := webhook.URL

	// 请求体模板替换
	bodyContent := webhook.Body
	if bodyContent != "" && data != nil {
		for key, value := range data {
			placeholder := fmt.Sprintf("{{%s}}", key)
			bodyContent = strings.ReplaceAll(bodyContent, placeholder, fmt.Sprintf("%v", value))
		}
	}

	var req *http.Request
	var err error

	method := strings.ToUpper(webhook.Method)
	if method == "" {
		method = "POST"
	}

	switch method {
	case "GET":
		// GET请求把参数拼到URL上
		if len(data) > 0 {
			params := url.Values{}
			for key, value := range data {
				params.Add(key, fmt.Sprintf("%v", value))
			}
			if strings.Contains(targetURL, "?") {
				targetURL += "&" + params.Encode()
			} else {
				targetURL += "?" + params.Encode()
			}
		}
		req, err = http.NewRequest(method, targetURL, nil)
	default:
		var bodyBytes []byte
		if bodyContent != "" {
			bodyBytes = []byte(bodyContent)
		}
		req, err = http.NewRequest(method, targetURL, bytes.NewReader(bodyBytes))
	}

	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	if method != "GET" && bodyContent != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := wc.Client.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send webhook: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-2xx status: %s", resp.Status)
	}

	return nil
}
