package conversation

import "strings"

// Classifier decides the sender of a row from its author and email fields.
// Classification is total and deterministic: assistant identifiers are
// checked first and short-circuit; everything else is a user message.
type Classifier struct {
	identifiers []string
	currentUser string
}

// DefaultIdentifiers are the author fragments treated as automated responders
// when no explicit list is configured.
var DefaultIdentifiers = []string{"assistant", "bot", "ai", "agent", "gpt", "claude"}

// NewClassifier builds a classifier from the configured identifier list and
// optional current-user identity. Identifiers are matched case-insensitively
// as substrings of the author field. An empty list falls back to
// DefaultIdentifiers.
func NewClassifier(identifiers []string, currentUser string) Classifier {
	if len(identifiers) == 0 {
		identifiers = DefaultIdentifiers
	}
	lowered := make([]string, 0, len(identifiers))
	for _, id := range identifiers {
		id = strings.ToLower(strings.TrimSpace(id))
		if id != "" {
			lowered = append(lowered, id)
		}
	}
	return Classifier{
		identifiers: lowered,
		currentUser: strings.ToLower(strings.TrimSpace(currentUser)),
	}
}

// Classify returns the sender for an author/email pair. A match against any
// assistant identifier always wins; the current-user identity can only
// confirm the default, never override an assistant match.
func (c Classifier) Classify(author, email string) Sender {
	lowered := strings.ToLower(author)
	for _, id := range c.identifiers {
		if strings.Contains(lowered, id) {
			return SenderAssistant
		}
	}
	return SenderUser
}

// ConfirmsUser reports whether the configured current-user identity
// positively matches the row: exact match, match on the email's local part,
// or substring containment either way. Diagnostic only — a non-match still
// classifies as user.
func (c Classifier) ConfirmsUser(author, email string) bool {
	if c.currentUser == "" {
		return false
	}
	author = strings.ToLower(strings.TrimSpace(author))
	email = strings.ToLower(strings.TrimSpace(email))
	if author == c.currentUser || email == c.currentUser {
		return true
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local == c.currentUser {
		return true
	}
	if localConf, _, ok := strings.Cut(c.currentUser, "@"); ok && localConf != "" {
		if author == localConf || strings.Contains(email, localConf) {
			return true
		}
	}
	if author != "" && (strings.Contains(author, c.currentUser) || strings.Contains(c.currentUser, author)) {
		return true
	}
	return false
}
