package bot

import (
	"context"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/trackclub/dropbot/src/dropbot/components/discordgw"
	"github.com/trackclub/dropbot/src/dropbot/components/round"
	"github.com/trackclub/dropbot/src/dropbot/components/scheduler"
	"github.com/trackclub/dropbot/src/dropbot/components/submissions"
	"github.com/trackclub/dropbot/src/dropbot/config"
	"github.com/trackclub/dropbot/src/dropbot/data"
)

type Bot struct {
	session   *discordgo.Session
	db        *gorm.DB
	rdb       *redis.Client
	cfg       config.Config
	store     *data.Store
	manager   *round.Manager
	scheduler *scheduler.Scheduler
	intake    *submissions.Handler
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	schedOnce sync.Once
}

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	b := &Bot{
		session: dg,
		db:      db,
		rdb:     rdb,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}
	b.initializeComponents()
	b.registerHandlers()

	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuilds

	return b, nil
}

func (b *Bot) initializeComponents() {
	b.store = data.NewStore(b.db, b.cfg.Defaults())
	gateway := discordgw.New(b.session)

	b.manager = round.NewManager(round.Config{
		Store:       b.store,
		Gateway:     gateway,
		Publisher:   round.NewPublisher(b.rdb),
		WebhookName: b.cfg.WebhookName,
		GraceDelay:  b.cfg.GraceDelay,
	})

	b.intake = submissions.NewHandler(submissions.Config{
		Store:   b.store,
		Manager: b.manager,
	})

	b.scheduler = scheduler.New(scheduler.Config{
		Store:          b.store,
		Manager:        b.manager,
		Gateway:        gateway,
		Redis:          b.rdb,
		PromptOverride: b.cfg.PromptOverride,
	})
}

func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.intake.HandleMessage)
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() {
	b.cancel()
	b.wg.Wait()
	b.session.Close()
}

// Store exposes the persistence layer to the webserver.
func (b *Bot) Store() *data.Store { return b.store }

// Manager exposes the round engine to the webserver.
func (b *Bot) Manager() *round.Manager { return b.manager }

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)

	// Ready fires again on reconnect; the scheduler starts once.
	b.schedOnce.Do(func() {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.scheduler.Start(b.ctx)
		}()
	})
}
