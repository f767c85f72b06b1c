// Command audit HTTP handlers: POST /commands and GET /commands.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rule-store/internal/repo"
)

// RecordCommandRequest appends one executed command to the log.
type RecordCommandRequest struct {
	UserID  int64    `json:"user_id" binding:"required" example:"80351110224678912"`
	GuildID int64    `json:"guild_id" binding:"required" example:"81384788765712384"`
	Command string   `json:"command" binding:"required" example:"ban"`
	Args    []string `json:"args" example:"@spammer,7d"`
}

// RecordCommand godoc
// @ID          recordCommand
// @Summary     Append a command to the audit log
// @Tags        Commands
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RecordCommandRequest  true  "Command"
// @Success     201  {object}  domain.CommandLog
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "User or guild not registered"
// @Router      /commands [post]
func (h *Handlers) RecordCommand(c *gin.Context) {
	var req RecordCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id, guild_id and command are required")
		return
	}
	e, err := h.audit.Record(c.Request.Context(), req.UserID, req.GuildID, req.Command, req.Args)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, e)
}

// ListCommands godoc
// @ID          listCommands
// @Summary     List audit log entries, newest first
// @Tags        Commands
// @Produce     json
// @Param       guild_id   query  string  false  "Guild snowflake"
// @Param       user_id    query  string  false  "User snowflake"
// @Param       command    query  string  false  "Command name"
// @Param       page       query  int     false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.Page[domain.CommandLog]
// @Router      /commands [get]
func (h *Handlers) ListCommands(c *gin.Context) {
	var f repo.CommandFilter
	var valid bool
	if f.GuildID, valid = snowflakeQuery(c, "guild_id"); !valid {
		return
	}
	if f.UserID, valid = snowflakeQuery(c, "user_id"); !valid {
		return
	}
	f.Command = strings.TrimSpace(c.Query("command"))

	page, pageSize := pageParams(c)
	items, total, err := h.audit.List(c.Request.Context(), f, page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, newPage(items, page, pageSize, total))
}
