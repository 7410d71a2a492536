package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"productif-agent/pkg/logger"
)

const defaultBaseURL = "https://graph.facebook.com"

// Config WhatsApp Cloud API 配置
type Config struct {
	BaseURL       string        `yaml:"base_url"`
	APIVersion    string        `yaml:"api_version"`
	PhoneNumberID string        `yaml:"phone_number_id"`
	AccessToken   string        `yaml:"access_token"`
	VerifyToken   string        `yaml:"verify_token"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Sender delivers text replies through the Cloud API.
type Sender struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewSender(cfg Config, logger *zap.Logger) *Sender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v17.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Sender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type outboundText struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

// SendError is returned when the Cloud API answers with a non-2xx status.
type SendError struct {
	Status int
	Body   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("whatsapp send: status %d: %s", e.Status, e.Body)
}

func (e *SendError) StatusCode() int { return e.Status }

// Send posts text to the given number. Non-digit characters are stripped.
func (s *Sender) Send(ctx context.Context, to, text string) error {
	msg := outboundText{MessagingProduct: "whatsapp", To: CleanNumber(to), Type: "text"}
	msg.Text.Body = text

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.APIVersion, s.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := &SendError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		logger.WithTrace(ctx, s.logger).Error("failed to send whatsapp message",
			zap.String("to", logger.MaskUser(msg.To)),
			zap.Int("status", resp.StatusCode))
		return err
	}
	return nil
}
