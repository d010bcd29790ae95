package chat

import (
	"regexp"
	"strconv"
	"strings"
)

// Action tags a chat turn's outcome for the client
type Action string

const (
	ActionListEmails    Action = "list_emails"
	ActionDeleteConfirm Action = "delete_confirm"
	ActionDeleteSelect  Action = "delete_select"
	ActionGenerateReply Action = "generate_reply"
	ActionDailyDigest   Action = "daily_digest"
	ActionCategorize    Action = "categorize"
	ActionSearchResults Action = "search_results"
	ActionClarify       Action = "clarify"
	ActionHelp          Action = "help"
	ActionDeleteSuccess Action = "delete_success"
	ActionError         Action = "error"
)

// Result is the outcome of one chat turn. Pending confirmations live
// entirely in the returned action and data; the server keeps no record
// of them.
type Result struct {
	Response string         `json:"response"`
	Action   Action         `json:"action,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// rule pairs a lexical trigger with its handler. Rules are evaluated
// in declaration order and the first match wins.
type rule struct {
	name   string
	match  func(text string) bool
	handle handlerFunc
}

// normalize lowercases and trims a chat message before rule matching
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// containsAny reports whether text contains any of the keywords as a
// substring. Matching is deliberately substring-level, not word-level.
func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

var digitsRe = regexp.MustCompile(`\d+`)

// firstNumber extracts the leftmost decimal number in text
func firstNumber(text string) (int, bool) {
	m := digitsRe.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// requestedCount maps literal count mentions to a fetch size. The "10"
// branch is checked first, so text mentioning both resolves to 10.
func requestedCount(text string) int64 {
	switch {
	case containsAny(text, "10", "ten"):
		return 10
	case containsAny(text, "20", "twenty"):
		return 20
	}
	return 5
}

// stripKeywords removes the given literal substrings and trims the rest
func stripKeywords(text string, keywords ...string) string {
	for _, kw := range keywords {
		text = strings.ReplaceAll(text, kw, "")
	}
	return strings.TrimSpace(text)
}

const helpText = `I can help you with:
• Read emails: "Show me my latest emails"
• Generate replies: "Reply to email 2"
• Delete emails: "Delete email 3" or "Delete latest email from Amazon"
• Search: "Find emails from John"
• Daily digest: "Give me a daily summary"
• Categorize: "Organize my emails"

What would you like to do?`
