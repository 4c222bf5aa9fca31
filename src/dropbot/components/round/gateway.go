package round

// SendOptions controls where a webhook message lands and which mention
// classes it may ping. Mentions are opt-in per message.
type SendOptions struct {
	ThreadID     string
	MentionRoles bool
	MentionUsers bool
}

// Gateway abstracts the chat platform. The engine only ever talks to
// this interface; the discordgw package implements it over discordgo.
type Gateway interface {
	// CreateThread creates a public thread under a channel and returns
	// its id.
	CreateThread(channelID, name string, autoArchiveMinutes int) (string, error)
	// CreateWebhook provisions a delivery endpoint on a channel and
	// returns its URL.
	CreateWebhook(channelID, name string) (string, error)
	// WebhookSend posts content through a delivery endpoint and returns
	// the resulting message id.
	WebhookSend(webhookURL, content string, opts SendOptions) (string, error)
	// FetchMessageReactions returns the emoji -> count map of a message.
	FetchMessageReactions(channelID, messageID string) (map[string]int, error)
	AddReaction(channelID, messageID, emoji string) error
	EditThread(threadID string, locked, archived bool) error
	// ResolveChannel confirms a channel or thread still exists.
	ResolveChannel(channelID string) error
}
