// Пакет advisor - внешний советник по времени уведомлений. Непрозрачный
// оракул: контракт корректности ограничен формой ответа
// {suggestedTime, rationale}, детерминированное ядро от него не зависит.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"thirtymeals/internal/models"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client - клиент OpenAI-совместимого chat API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewClient создаёт клиента советника.
func NewClient(apiKey, baseURL, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

const promptTemplate = `You are an expert notification scheduler. Given the notification type and user behavior data, suggest the optimal time to send the notification and explain your reasoning. Respond with a JSON object of the form {"suggestedTime": "12:00 PM", "rationale": "..."} and nothing else.

Notification Type: %s
User Behavior: %s`

// SuggestTime запрашивает у модели оптимальное время уведомления.
func (c *Client) SuggestTime(ctx context.Context, notificationType, userBehavior string) (models.TimeSuggestion, error) {
	if c.apiKey == "" {
		return models.TimeSuggestion{}, fmt.Errorf("LLM_API_KEY не настроен")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, notificationType, userBehavior)},
		},
		MaxTokens:   300,
		Temperature: 0.2,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return models.TimeSuggestion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return models.TimeSuggestion{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return models.TimeSuggestion{}, fmt.Errorf("запрос к советнику не удался: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.TimeSuggestion{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return models.TimeSuggestion{}, fmt.Errorf("советник ответил статусом %d: %s", resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.TimeSuggestion{}, err
	}
	if len(parsed.Choices) == 0 {
		return models.TimeSuggestion{}, fmt.Errorf("пустой ответ советника")
	}

	return parseSuggestion(parsed.Choices[0].Message.Content)
}

// parseSuggestion вытаскивает JSON-объект из текста ответа модели.
// Модели любят оборачивать JSON в пояснения и код-блоки.
func parseSuggestion(content string) (models.TimeSuggestion, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return models.TimeSuggestion{}, fmt.Errorf("в ответе советника нет JSON: %.120s", content)
	}

	var suggestion models.TimeSuggestion
	if err := json.Unmarshal([]byte(content[start:end+1]), &suggestion); err != nil {
		return models.TimeSuggestion{}, fmt.Errorf("ошибка разбора ответа советника: %w", err)
	}
	if suggestion.SuggestedTime == "" {
		return models.TimeSuggestion{}, fmt.Errorf("советник не вернул suggestedTime")
	}
	return suggestion, nil
}
