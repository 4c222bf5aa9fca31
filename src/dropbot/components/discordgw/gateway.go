package discordgw

import (
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"github.com/trackclub/dropbot/src/dropbot/components/round"
)

// Gateway implements round.Gateway over a discordgo session.
type Gateway struct {
	session *discordgo.Session
}

func New(session *discordgo.Session) *Gateway {
	return &Gateway{session: session}
}

var webhookURLRe = regexp.MustCompile(`/webhooks/(\d+)/([^/?\s]+)`)

func parseWebhookURL(url string) (id, token string, err error) {
	m := webhookURLRe.FindStringSubmatch(url)
	if m == nil {
		return "", "", fmt.Errorf("malformed webhook URL")
	}
	return m[1], m[2], nil
}

func (g *Gateway) CreateThread(channelID, name string, autoArchiveMinutes int) (string, error) {
	thread, err := g.session.ThreadStart(channelID, name, discordgo.ChannelTypeGuildPublicThread, autoArchiveMinutes)
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

func (g *Gateway) CreateWebhook(channelID, name string) (string, error) {
	wh, err := g.session.WebhookCreate(channelID, name, "")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://discord.com/api/webhooks/%s/%s", wh.ID, wh.Token), nil
}

func (g *Gateway) WebhookSend(webhookURL, content string, opts round.SendOptions) (string, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return "", err
	}

	// Mentions are suppressed unless a class is explicitly enabled.
	parse := []discordgo.AllowedMentionType{}
	if opts.MentionRoles {
		parse = append(parse, discordgo.AllowedMentionTypeRoles)
	}
	if opts.MentionUsers {
		parse = append(parse, discordgo.AllowedMentionTypeUsers)
	}
	params := &discordgo.WebhookParams{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: parse},
	}

	var msg *discordgo.Message
	if opts.ThreadID != "" {
		msg, err = g.session.WebhookThreadExecute(id, token, true, opts.ThreadID, params)
	} else {
		msg, err = g.session.WebhookExecute(id, token, true, params)
	}
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", nil
	}
	return msg.ID, nil
}

func (g *Gateway) FetchMessageReactions(channelID, messageID string) (map[string]int, error) {
	msg, err := g.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(msg.Reactions))
	for _, r := range msg.Reactions {
		if r.Emoji != nil {
			counts[r.Emoji.Name] = r.Count
		}
	}
	return counts, nil
}

func (g *Gateway) AddReaction(channelID, messageID, emoji string) error {
	return g.session.MessageReactionAdd(channelID, messageID, emoji)
}

func (g *Gateway) EditThread(threadID string, locked, archived bool) error {
	edit := &discordgo.ChannelEdit{Locked: &locked}
	if archived {
		edit.Archived = &archived
	}
	_, err := g.session.ChannelEdit(threadID, edit)
	return err
}

// ResolveChannel checks the state cache first and falls back to a
// remote fetch, like every other lookup in the bot.
func (g *Gateway) ResolveChannel(channelID string) error {
	if _, err := g.session.State.Channel(channelID); err == nil {
		return nil
	}
	_, err := g.session.Channel(channelID)
	return err
}
