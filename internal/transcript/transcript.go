package transcript

import "strings"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Item is one utterance of a call transcript.
type Item struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// ToSingleLine renders a transcript as one storage line in the form
// "ROLE: content | ROLE: content". Internal newlines are collapsed to spaces
// and entries with empty content are dropped entirely.
func ToSingleLine(items []Item) string {
	segments := make([]string, 0, len(items))

	for _, item := range items {
		content := strings.TrimSpace(newlineReplacer.Replace(item.Content))
		if content == "" {
			continue
		}

		segments = append(segments, strings.ToUpper(item.Role)+": "+content)
	}

	return strings.Join(segments, " | ")
}
