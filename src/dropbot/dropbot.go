package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/trackclub/dropbot/src/dropbot/bot"
	"github.com/trackclub/dropbot/src/dropbot/config"
	"github.com/trackclub/dropbot/src/dropbot/data"
	"github.com/trackclub/dropbot/src/dropbot/webserver"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		log.Fatalf("MYSQL_DSN is not set")
	}
	db := data.MustMySQL(dsn)

	cfg := config.Load(db)
	if cfg.Token == "" {
		log.Fatalf("discord token is not set (settings discord_token or DISCORD_TOKEN)")
	}
	rdb := data.MustRedis(cfg.RedisURL)

	b, err := bot.New(cfg, db, rdb)
	if err != nil {
		log.Fatalf("create bot: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("open discord session: %v", err)
	}

	router := webserver.New(cfg, b.Store(), b.Manager())
	go func() {
		if err := router.Run(":" + cfg.APIPort); err != nil {
			log.Fatalf("webserver: %v", err)
		}
	}()

	log.Println("dropbot is running. Press CTRL-C to exit.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	b.Stop()
}
