package blogger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/frankhjung/blogspot-publishing/publish/domain"
)

// apiPost is the Blogger v3 wire representation of a post.
type apiPost struct {
	Kind    string   `json:"kind,omitempty"`
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content,omitempty"`
	Labels  []string `json:"labels,omitempty"`
	Status  string   `json:"status,omitempty"`
	URL     string   `json:"url,omitempty"`
}

type postList struct {
	Items         []apiPost `json:"items"`
	NextPageToken string    `json:"nextPageToken"`
}

func (p apiPost) toDomain() *domain.Post {
	return &domain.Post{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		Labels:  p.Labels,
		Status:  domain.PostStatus(strings.ToUpper(p.Status)),
		URL:     p.URL,
	}
}

// apiError is a non-2xx reply from the API.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("blogger API returned status %d: %s", e.StatusCode, e.Message)
}

// newAPIError extracts the message from a Google-style error envelope,
// falling back to the raw body.
func newAPIError(status int, body []byte) *apiError {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}
	return &apiError{StatusCode: status, Message: message}
}
