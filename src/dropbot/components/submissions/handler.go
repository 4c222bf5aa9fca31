package submissions

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/trackclub/dropbot/src/dropbot/components/round"
	"github.com/trackclub/dropbot/src/dropbot/components/timeutil"
	"github.com/trackclub/dropbot/src/dropbot/data"
)

type Config struct {
	Store   *data.Store
	Manager *round.Manager
	Clock   timeutil.Clock
}

// Handler collects submissions from messages posted into running
// round threads. It runs concurrently with the scheduler tick; both
// paths only touch the store through its atomic primitives.
type Handler struct {
	config Config
}

func NewHandler(config Config) *Handler {
	if config.Clock == nil {
		config.Clock = timeutil.System()
	}
	return &Handler{config: config}
}

func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	r, err := h.config.Store.GetRunningRoundByThread(m.GuildID, m.ChannelID)
	if err != nil {
		log.Printf("submissions: round lookup failed for thread %s: %v", m.ChannelID, err)
		return
	}
	if r == nil {
		return
	}

	// The round is conceptually closed once its end time passes, even
	// if the scheduler has not processed it yet.
	if r.EndTime <= h.config.Clock.Now().Unix() {
		return
	}

	if err := h.config.Manager.RecordSubmission(r, m.ID, m.Author.ID, m.Content); err != nil {
		log.Printf("submissions: failed to record message %s: %v", m.ID, err)
	}
}
