// Package whatsapp speaks the WhatsApp Cloud API: it parses webhook
// deliveries into inbound messages and sends text replies.
package whatsapp

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"productif-agent/internal/model"
)

// webhookPayload Cloud API 推送格式
type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Messages []cloudMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`

	// 测试用的扁平格式
	From        string `json:"from"`
	PhoneNumber string `json:"phoneNumber"`
	Text        string `json:"text"`
	MessageText string `json:"messageText"`
	ID          string `json:"id"`
}

type cloudMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      struct {
		Body string `json:"body"`
	} `json:"text"`
}

// ParseWebhook extracts every text message from a webhook body. Status
// updates, media and empty messages are skipped, so an empty slice with a nil
// error is a normal result.
func ParseWebhook(body []byte, now time.Time) ([]model.InboundMessage, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decoding webhook payload: %w", err)
	}

	var out []model.InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if m.Type != "" && m.Type != "text" {
					continue
				}
				text := strings.TrimSpace(m.Text.Body)
				from := CleanNumber(m.From)
				if text == "" || from == "" {
					continue
				}
				out = append(out, model.InboundMessage{
					ID:         m.ID,
					UserID:     from,
					Text:       text,
					ReceivedAt: parseTimestamp(m.Timestamp, now),
				})
			}
		}
	}
	if len(p.Entry) > 0 {
		return out, nil
	}

	from := CleanNumber(firstNonEmpty(p.From, p.PhoneNumber))
	text := strings.TrimSpace(firstNonEmpty(p.Text, p.MessageText))
	if from == "" || text == "" {
		return nil, nil
	}
	return []model.InboundMessage{{ID: p.ID, UserID: from, Text: text, ReceivedAt: now}}, nil
}

// CleanNumber keeps only the digits of a phone number.
func CleanNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseTimestamp(s string, fallback time.Time) time.Time {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec <= 0 {
		return fallback
	}
	return time.Unix(sec, 0).UTC()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
