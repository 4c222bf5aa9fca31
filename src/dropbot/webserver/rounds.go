package webserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trackclub/dropbot/src/dropbot/components/round"
	"github.com/trackclub/dropbot/src/dropbot/components/timeutil"
	"github.com/trackclub/dropbot/src/dropbot/data"
)

type handlers struct {
	store   *data.Store
	manager *round.Manager
}

func (h handlers) status(c *gin.Context) {
	guildID := c.Query("guild_id")
	if guildID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "guild_id required"})
		return
	}

	settings, err := h.store.GetOrCreateSettings(guildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	running, err := h.store.GetRunningRound(guildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	resp := gin.H{
		"channel_id":    settings.ChannelID,
		"ping_role_id":  settings.PingRoleID,
		"duration":      timeutil.Humanize(settings.DurationSeconds),
		"daily_enabled": settings.DailyEnabled,
		"daily_hhmm":    settings.DailyHHMM,
		"webhook_set":   settings.WebhookURL != "",
		"allow_domains": settings.AllowDomains,
	}
	if running != nil {
		resp["running_round"] = gin.H{
			"round_id":  running.ID,
			"thread_id": running.ThreadID,
			"ends_at":   running.EndTime,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h handlers) startRound(c *gin.Context) {
	var req struct {
		GuildID         string `json:"guild_id" binding:"required"`
		ChannelID       string `json:"channel_id"`
		DurationMinutes int    `json:"duration_minutes"`
		Prompt          string `json:"prompt"`
		PingRoleID      string `json:"ping_role_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	settings, err := h.store.GetOrCreateSettings(req.GuildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	running, err := h.store.GetRunningRound(req.GuildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if running != nil {
		c.JSON(http.StatusConflict, gin.H{"err": "a round is already running", "round_id": running.ID})
		return
	}

	channelID := req.ChannelID
	if channelID == "" {
		channelID = settings.ChannelID
	}
	if channelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "no channel configured; set drop_channel_id or pass channel_id"})
		return
	}

	duration := settings.DurationSeconds
	if req.DurationMinutes > 0 {
		duration = req.DurationMinutes * 60
	}
	pingRoleID := req.PingRoleID
	if pingRoleID == "" {
		pingRoleID = settings.PingRoleID
	}

	roundID, err := h.manager.StartRound(req.GuildID, channelID, req.Prompt, duration, pingRoleID)
	if err != nil {
		log.Printf("webserver: start round failed for guild %s: %v", req.GuildID, err)
		c.JSON(http.StatusBadGateway, gin.H{"err": "could not start round; check thread and webhook permissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"round_id": roundID})
}

func (h handlers) endRound(c *gin.Context) {
	var req struct {
		GuildID string `json:"guild_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	running, err := h.store.GetRunningRound(req.GuildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if running == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "no running round"})
		return
	}

	if err := h.manager.ForceEnd(running); err != nil {
		log.Printf("webserver: end round %d failed: %v", running.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"round_id": running.ID, "status": "ended"})
}
