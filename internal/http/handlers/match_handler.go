// Match HTTP handlers.
//
// These are the hot-path endpoints a bot runtime calls per gateway event:
//   - POST /match/text      (delete this message?)
//   - POST /match/reply     (block this reply?)
//   - POST /match/reaction  (react with which emoji?)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rule-store/internal/rules"
)

// MatchRequest describes a message. GuildID and ChannelID may be 0 for
// direct messages.
type MatchRequest struct {
	GuildID   int64  `json:"guild_id" example:"81384788765712384"`
	ChannelID int64  `json:"channel_id" example:"81384788765712385"`
	UserID    int64  `json:"user_id" example:"80351110224678912"`
	Text      string `json:"text" example:"buy cheap gold"`
}

func (r MatchRequest) event() rules.Event {
	return rules.Event{GuildID: r.GuildID, ChannelID: r.ChannelID, UserID: r.UserID, Text: r.Text}
}

// ReplyMatchRequest describes a reply. AppliesTo is the author of the reply;
// the embedded location and user identify the message being replied to and
// Text is the reply's content.
type ReplyMatchRequest struct {
	AppliesTo int64 `json:"applies_to" example:"80351110224678912"`
	MatchRequest
}

// MatchText godoc
// @ID          matchText
// @Summary     Decide whether a message must be deleted
// @Tags        Match
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.MatchRequest  true  "Message"
// @Success     200  {object}  services.TextDecision
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /match/text [post]
func (h *Handlers) MatchText(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	d, err := h.match.TextFilterDecision(c.Request.Context(), req.event())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// MatchReply godoc
// @ID          matchReply
// @Summary     Decide whether a reply must be blocked
// @Tags        Match
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ReplyMatchRequest  true  "Reply"
// @Success     200  {object}  services.ReplyDecision
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /match/reply [post]
func (h *Handlers) MatchReply(c *gin.Context) {
	var req ReplyMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	d, err := h.match.ReplyFilterDecision(c.Request.Context(), req.AppliesTo, req.event())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// MatchReaction godoc
// @ID          matchReaction
// @Summary     Pick the emoji to react with
// @Tags        Match
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.MatchRequest  true  "Message (text ignored)"
// @Success     200  {object}  services.ReactionDecision
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /match/reaction [post]
func (h *Handlers) MatchReaction(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	d, err := h.match.ReactionDecision(c.Request.Context(), req.event())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}
