// Registry HTTP handlers.
//
// Endpoints for users, guilds, memberships and gateway message events:
//   - PUT    /users/{id}, GET /users/{id}, DELETE /users/{id}, PUT /users/{id}/banned
//   - PUT    /guilds/{id}, GET /guilds/{id}, DELETE /guilds/{id}, PUT /guilds/{id}/settings
//   - PUT    /guilds/{id}/channels/{channel_id}/tracking
//   - PUT    /guilds/{id}/members/{user_id}/tracking, GET /guilds/{id}/members/{user_id}
//   - GET    /guilds/{id}/leaderboard
//   - POST   /events/messages, POST /events/deletions
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/http/middleware"
	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/services"
)

//
// DTOs
//

// PutUserRequest upserts a user.
type PutUserRequest struct {
	Username string `json:"username" binding:"max=100" example:"modbot"`
}

// PutGuildRequest upserts a guild.
type PutGuildRequest struct {
	Name string `json:"name" binding:"max=100" example:"Gophers"`
}

// BannedRequest sets the global ban flag.
type BannedRequest struct {
	Banned *bool `json:"banned" binding:"required"`
}

// TrackingRequest toggles message counting.
type TrackingRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// MessageEventRequest reports one observed message. The occurrence key is
// taken from the Idempotency-Key header, falling back to MessageID.
type MessageEventRequest struct {
	MessageID string `json:"message_id,omitempty" example:"1098765432109876543"`
	GuildID   int64  `json:"guild_id" binding:"required" example:"81384788765712384"`
	ChannelID int64  `json:"channel_id" binding:"required" example:"81384788765712385"`
	UserID    int64  `json:"user_id" binding:"required" example:"80351110224678912"`
	Username  string `json:"username" binding:"max=100" example:"nelly"`
}

// DeletionEventRequest reports deleted messages by one author. Count is the
// number removed (bulk deletes); it defaults to 1. The occurrence key is
// taken from the Idempotency-Key header, falling back to MessageID.
type DeletionEventRequest struct {
	MessageID string `json:"message_id,omitempty" example:"1098765432109876543"`
	GuildID   int64  `json:"guild_id" binding:"required" example:"81384788765712384"`
	ChannelID int64  `json:"channel_id" binding:"required" example:"81384788765712385"`
	UserID    int64  `json:"user_id" binding:"required" example:"80351110224678912"`
	Username  string `json:"username" binding:"max=100" example:"nelly"`
	Count     int64  `json:"count,omitempty" example:"1"`
}

// ObservationResponse reports what a message or deletion event changed.
type ObservationResponse struct {
	Counted         bool  `json:"counted"`
	Duplicate       bool  `json:"duplicate"`
	MessagesSent    int64 `json:"messages_sent"`
	MessagesDeleted int64 `json:"messages_deleted"`
}

// MemberResponse is a membership with its leaderboard position for the
// requested counter.
type MemberResponse struct {
	domain.Membership
	Rank int64  `json:"rank"`
	By   string `json:"by"`
}

// counterNames are the public names of the leaderboard orderings.
var counterNames = map[repo.Counter]string{
	repo.CounterSent:    "sent",
	repo.CounterDeleted: "deleted",
}

// counterParam reads ?by=sent|deleted. On error it writes a 400 and
// returns false.
func counterParam(c *gin.Context) (repo.Counter, bool) {
	by, err := services.ParseCounter(c.Query("by"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "by must be sent or deleted")
		return "", false
	}
	return by, true
}

//
// Users
//

// PutUser godoc
// @ID          putUser
// @Summary     Upsert a user
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       id    path  string                   true  "User snowflake"
// @Param       body  body  handlers.PutUserRequest  true  "User payload"
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /users/{id} [put]
func (h *Handlers) PutUser(c *gin.Context) {
	id, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	var req PutUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, err := h.registry.ObserveUser(c.Request.Context(), id, req.Username)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user
// @Tags        Users
// @Produce     json
// @Param       id  path  string  true  "User snowflake"
// @Success     200  {object}  domain.User
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	u, err := h.registry.GetUser(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// SetUserBanned godoc
// @ID          setUserBanned
// @Summary     Set the global ban flag
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       id    path  string                  true  "User snowflake"
// @Param       body  body  handlers.BannedRequest  true  "Ban flag"
// @Success     200  {object}  domain.User
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /users/{id}/banned [put]
func (h *Handlers) SetUserBanned(c *gin.Context) {
	id, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	var req BannedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "banned is required")
		return
	}
	u, err := h.registry.SetUserBanned(c.Request.Context(), id, *req.Banned)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Purge a user and everything scoped to them
// @Tags        Users
// @Param       id  path  string  true  "User snowflake"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	if err := h.registry.PurgeUser(c.Request.Context(), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

//
// Guilds
//

// PutGuild godoc
// @ID          putGuild
// @Summary     Upsert a guild
// @Description New guilds start with the default prefix and slash commands off.
// @Tags        Guilds
// @Accept      json
// @Produce     json
// @Param       id    path  string                    true  "Guild snowflake"
// @Param       body  body  handlers.PutGuildRequest  true  "Guild payload"
// @Success     200  {object}  domain.Guild
// @Router      /guilds/{id} [put]
func (h *Handlers) PutGuild(c *gin.Context) {
	id, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	var req PutGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	g, err := h.registry.ObserveGuild(c.Request.Context(), id, req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, g)
}

// GetGuild godoc
// @ID          getGuild
// @Summary     Get a guild
// @Tags        Guilds
// @Produce     json
// @Param       id  path  string  true  "Guild snowflake"
// @Success     200  {object}  domain.Guild
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /guilds/{id} [get]
func (h *Handlers) GetGuild(c *gin.Context) {
	id, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	g, err := h.registry.GetGuild(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, g)
}

// UpdateGuildSettings godoc
// @ID          updateGuildSettings
// @Summary     Change prefix and/or slash-command mode
// @Tags        Guilds
// @Accept      json
// @Produce     json
// @Param       id    path  string                  true  "Guild snowflake"
// @Param       body  body  services.GuildSettings  true  "Fields to change"
// @Success     200  {object}  domain.Guild
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /guilds/{id}/settings [put]
func (h *Handlers) UpdateGuildSettings(c *gin.Context) {
	id, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	var req services.GuildSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	g, err := h.registry.UpdateGuildSettings(c.Request.Context(), id, req)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, g)
}

// DeleteGuild godoc
// @ID          deleteGuild
// @Summary     Purge a guild and everything scoped to it
// @Tags        Guilds
// @Param       id  path  string  true  "Guild snowflake"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /guilds/{id} [delete]
func (h *Handlers) DeleteGuild(c *gin.Context) {
	id, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	if err := h.registry.PurgeGuild(c.Request.Context(), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// SetChannelTracking godoc
// @ID          setChannelTracking
// @Summary     Toggle message counting for a channel
// @Tags        Guilds
// @Accept      json
// @Produce     json
// @Param       id          path  string                    true  "Guild snowflake"
// @Param       channel_id  path  string                    true  "Channel snowflake"
// @Param       body        body  handlers.TrackingRequest  true  "Tracking flag"
// @Success     200  {object}  domain.ChannelSetting
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /guilds/{id}/channels/{channel_id}/tracking [put]
func (h *Handlers) SetChannelTracking(c *gin.Context) {
	guildID, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	channelID, valid := snowflakeParam(c, "channel_id")
	if !valid {
		return
	}
	var req TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "enabled is required")
		return
	}
	cs, err := h.registry.SetChannelTracking(c.Request.Context(), guildID, channelID, *req.Enabled)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, cs)
}

// SetMemberTracking godoc
// @ID          setMemberTracking
// @Summary     Toggle message counting for one member
// @Tags        Guilds
// @Accept      json
// @Produce     json
// @Param       id       path  string                    true  "Guild snowflake"
// @Param       user_id  path  string                    true  "User snowflake"
// @Param       body     body  handlers.TrackingRequest  true  "Tracking flag"
// @Success     200  {object}  domain.Membership
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /guilds/{id}/members/{user_id}/tracking [put]
func (h *Handlers) SetMemberTracking(c *gin.Context) {
	guildID, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	userID, valid := snowflakeParam(c, "user_id")
	if !valid {
		return
	}
	var req TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "enabled is required")
		return
	}
	m, err := h.registry.SetMemberTracking(c.Request.Context(), userID, guildID, *req.Enabled)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// GetMember godoc
// @ID          getMember
// @Summary     Get a membership and its rank
// @Tags        Guilds
// @Produce     json
// @Param       id       path  string  true  "Guild snowflake"
// @Param       user_id  path   string  true   "User snowflake"
// @Param       by       query  string  false  "Ranking counter"  Enums(sent, deleted) default(sent)
// @Success     200  {object}  handlers.MemberResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /guilds/{id}/members/{user_id} [get]
func (h *Handlers) GetMember(c *gin.Context) {
	guildID, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	userID, valid := snowflakeParam(c, "user_id")
	if !valid {
		return
	}
	by, valid := counterParam(c)
	if !valid {
		return
	}
	rank, m, err := h.registry.Rank(c.Request.Context(), userID, guildID, by)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, MemberResponse{Membership: *m, Rank: rank, By: counterNames[by]})
}

// Leaderboard godoc
// @ID          leaderboard
// @Summary     Top members by messages sent or deleted
// @Tags        Guilds
// @Produce     json
// @Param       id         path   string  true   "Guild snowflake"
// @Param       by         query  string  false  "Ranking counter" Enums(sent, deleted) default(sent)
// @Param       page       query  int     false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.Page[repo.LeaderboardRow]
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /guilds/{id}/leaderboard [get]
func (h *Handlers) Leaderboard(c *gin.Context) {
	guildID, valid := snowflakeParam(c, "id")
	if !valid {
		return
	}
	by, valid := counterParam(c)
	if !valid {
		return
	}
	page, pageSize := pageParams(c)
	rows, total, err := h.registry.Leaderboard(c.Request.Context(), guildID, by, page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, newPage[repo.LeaderboardRow](rows, page, pageSize, total))
}

//
// Events
//

// ObserveMessage godoc
// @ID          observeMessage
// @Summary     Report an observed message
// @Description Upserts the author and bumps the member's counter unless tracking is off.
// @Description Redelivered events with the same occurrence key are acknowledged without effect.
// @Tags        Events
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                        false  "Occurrence key"
// @Param       body             body    handlers.MessageEventRequest  true   "Event"
// @Success     200  {object}  handlers.ObservationResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Guild not registered"
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /events/messages [post]
func (h *Handlers) ObserveMessage(c *gin.Context) {
	var req MessageEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "guild_id, channel_id and user_id are required")
		return
	}
	key, hasKey := middleware.GetOccurrenceKey(c)
	if !hasKey && req.MessageID != "" {
		if _, err := strconv.ParseUint(req.MessageID, 10, 64); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_id must be a snowflake")
			return
		}
		key = req.MessageID
	}

	obs, err := h.registry.ObserveMessage(c.Request.Context(), services.MessageEvent{
		OccurrenceKey: key,
		GuildID:       req.GuildID,
		ChannelID:     req.ChannelID,
		UserID:        req.UserID,
		Username:      req.Username,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, observationResponse(obs))
}

// ObserveDeletion godoc
// @ID          observeDeletion
// @Summary     Report deleted messages
// @Description Bumps the member's deleted-message counter by count unless tracking is off.
// @Description Redelivered events with the same occurrence key are acknowledged without effect.
// @Tags        Events
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                         false  "Occurrence key"
// @Param       body             body    handlers.DeletionEventRequest  true   "Event"
// @Success     200  {object}  handlers.ObservationResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /events/deletions [post]
func (h *Handlers) ObserveDeletion(c *gin.Context) {
	var req DeletionEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "guild_id, channel_id and user_id are required")
		return
	}
	key, hasKey := middleware.GetOccurrenceKey(c)
	if !hasKey && req.MessageID != "" {
		if _, err := strconv.ParseUint(req.MessageID, 10, 64); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_id must be a snowflake")
			return
		}
		key = req.MessageID
	}

	obs, err := h.registry.ObserveDeletion(c.Request.Context(), services.DeletionEvent{
		OccurrenceKey: key,
		GuildID:       req.GuildID,
		ChannelID:     req.ChannelID,
		UserID:        req.UserID,
		Username:      req.Username,
		Count:         req.Count,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, observationResponse(obs))
}

func observationResponse(obs *services.Observation) ObservationResponse {
	resp := ObservationResponse{Counted: obs.Counted, Duplicate: obs.Duplicate}
	if obs.Membership != nil {
		resp.MessagesSent = obs.Membership.MessagesSent
		resp.MessagesDeleted = obs.Membership.MessagesDeleted
	}
	return resp
}
