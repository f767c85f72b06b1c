// Rule HTTP handlers.
//
// The three rule kinds share one shape of endpoints:
//   - POST   /{kind}          (create, pattern validated up front)
//   - GET    /{kind}          (list, paginated, filter by guild_id/user_id/enabled)
//   - GET    /{kind}/{id}
//   - PATCH  /{kind}/{id}     (enable or disable)
//   - DELETE /{kind}/{id}
//
// where kind is text-filters, reply-filters or reactions. DELETE /reactions
// additionally removes every reaction of a user with a given emoji.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/services"
)

// ReplyFilterRequest creates a reply filter. AppliesTo is the user whose
// replies are filtered; Scope locates the message being replied to.
type ReplyFilterRequest struct {
	AppliesTo int64 `json:"applies_to" binding:"required" example:"80351110224678912"`
	services.FilterInput
}

// EnabledRequest toggles a rule.
type EnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// DeletedResponse reports a bulk delete.
type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func ruleID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "rule id must be a UUID")
		return "", false
	}
	return id, true
}

// ruleFilter reads guild_id, user_id and enabled from the query.
func ruleFilter(c *gin.Context) (repo.RuleFilter, bool) {
	var f repo.RuleFilter
	var valid bool
	if f.GuildID, valid = snowflakeQuery(c, "guild_id"); !valid {
		return f, false
	}
	if f.UserID, valid = snowflakeQuery(c, "user_id"); !valid {
		return f, false
	}
	if raw := c.Query("enabled"); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil || !on {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "enabled only accepts true")
			return f, false
		}
		f.OnlyEnabled = true
	}
	return f, true
}

func listRules[T any](c *gin.Context, list func(context.Context, repo.RuleFilter, int, int) ([]T, int64, error)) {
	f, valid := ruleFilter(c)
	if !valid {
		return
	}
	page, pageSize := pageParams(c)
	items, total, err := list(c.Request.Context(), f, page, pageSize)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, newPage(items, page, pageSize, total))
}

func getRule[T any](c *gin.Context, get func(context.Context, string) (*T, error)) {
	id, valid := ruleID(c)
	if !valid {
		return
	}
	r, err := get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

func toggleRule[T any](c *gin.Context, set func(context.Context, string, bool) (*T, error)) {
	id, valid := ruleID(c)
	if !valid {
		return
	}
	var req EnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "enabled is required")
		return
	}
	r, err := set(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

func deleteRule(c *gin.Context, del func(context.Context, string) error) {
	id, valid := ruleID(c)
	if !valid {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

//
// Text filters
//

// CreateTextFilter godoc
// @ID          createTextFilter
// @Summary     Create a text filter
// @Description Messages matching the regex inside the scope are deleted. Null scope ids match anything.
// @Tags        TextFilters
// @Accept      json
// @Produce     json
// @Param       body  body  services.FilterInput  true  "Filter"
// @Success     201  {object}  domain.TextFilter
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Scoped guild or user not registered"
// @Failure     422  {object}  handlers.ErrorResponse  "Regex does not compile"
// @Router      /text-filters [post]
func (h *Handlers) CreateTextFilter(c *gin.Context) {
	var req services.FilterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	f, err := h.rules.CreateTextFilter(c.Request.Context(), req)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, f)
}

// ListTextFilters godoc
// @ID          listTextFilters
// @Summary     List text filters
// @Tags        TextFilters
// @Produce     json
// @Param       guild_id   query  string  false  "Only rules scoped to this guild"
// @Param       user_id    query  string  false  "Only rules scoped to this user"
// @Param       enabled    query  bool    false  "Only enabled rules"
// @Param       page       query  int     false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.Page[domain.TextFilter]
// @Router      /text-filters [get]
func (h *Handlers) ListTextFilters(c *gin.Context) {
	listRules(c, h.rules.ListTextFilters)
}

// GetTextFilter returns one text filter.
func (h *Handlers) GetTextFilter(c *gin.Context) {
	getRule(c, h.rules.GetTextFilter)
}

// SetTextFilterEnabled godoc
// @ID          setTextFilterEnabled
// @Summary     Enable or disable a text filter
// @Tags        TextFilters
// @Accept      json
// @Produce     json
// @Param       id    path  string                   true  "Rule id (UUID)"
// @Param       body  body  handlers.EnabledRequest  true  "Flag"
// @Success     200  {object}  domain.TextFilter
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /text-filters/{id} [patch]
func (h *Handlers) SetTextFilterEnabled(c *gin.Context) {
	toggleRule(c, h.rules.SetTextFilterEnabled)
}

// DeleteTextFilter deletes a text filter.
func (h *Handlers) DeleteTextFilter(c *gin.Context) {
	deleteRule(c, h.rules.DeleteTextFilter)
}

//
// Reply filters
//

// CreateReplyFilter godoc
// @ID          createReplyFilter
// @Summary     Create a reply filter
// @Description Replies written by applies_to that match the regex are blocked when the replied-to message is inside the scope.
// @Tags        ReplyFilters
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ReplyFilterRequest  true  "Filter"
// @Success     201  {object}  domain.ReplyFilter
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     422  {object}  handlers.ErrorResponse
// @Router      /reply-filters [post]
func (h *Handlers) CreateReplyFilter(c *gin.Context) {
	var req ReplyFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "applies_to is required")
		return
	}
	f, err := h.rules.CreateReplyFilter(c.Request.Context(), req.AppliesTo, req.FilterInput)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, f)
}

// ListReplyFilters lists reply filters; user_id filters on applies_to.
func (h *Handlers) ListReplyFilters(c *gin.Context) {
	listRules(c, h.rules.ListReplyFilters)
}

// GetReplyFilter returns one reply filter.
func (h *Handlers) GetReplyFilter(c *gin.Context) {
	getRule(c, h.rules.GetReplyFilter)
}

// SetReplyFilterEnabled enables or disables a reply filter.
func (h *Handlers) SetReplyFilterEnabled(c *gin.Context) {
	toggleRule(c, h.rules.SetReplyFilterEnabled)
}

// DeleteReplyFilter deletes a reply filter.
func (h *Handlers) DeleteReplyFilter(c *gin.Context) {
	deleteRule(c, h.rules.DeleteReplyFilter)
}

//
// Reactions
//

// CreateReaction godoc
// @ID          createReaction
// @Summary     Create a reaction rule
// @Description The bot reacts with emoji to messages from user_id inside the optional guild/channel scope.
// @Tags        Reactions
// @Accept      json
// @Produce     json
// @Param       body  body  services.ReactionInput  true  "Rule"
// @Success     201  {object}  domain.ReactionRule
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /reactions [post]
func (h *Handlers) CreateReaction(c *gin.Context) {
	var req services.ReactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.rules.CreateReaction(c.Request.Context(), req)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}

// ListReactions lists reaction rules.
func (h *Handlers) ListReactions(c *gin.Context) {
	listRules(c, h.rules.ListReactions)
}

// GetReaction returns one reaction rule.
func (h *Handlers) GetReaction(c *gin.Context) {
	getRule(c, h.rules.GetReaction)
}

// SetReactionEnabled enables or disables a reaction rule.
func (h *Handlers) SetReactionEnabled(c *gin.Context) {
	toggleRule(c, h.rules.SetReactionEnabled)
}

// DeleteReaction deletes a reaction rule.
func (h *Handlers) DeleteReaction(c *gin.Context) {
	deleteRule(c, h.rules.DeleteReaction)
}

// DeleteReactionsFor godoc
// @ID          deleteReactionsFor
// @Summary     Remove every reaction rule of a user with one emoji
// @Tags        Reactions
// @Produce     json
// @Param       user_id  query  string  true  "User snowflake"
// @Param       emoji    query  string  true  "Emoji"
// @Success     200  {object}  handlers.DeletedResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /reactions [delete]
func (h *Handlers) DeleteReactionsFor(c *gin.Context) {
	userID, valid := snowflakeQuery(c, "user_id")
	if !valid {
		return
	}
	if userID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id is required")
		return
	}
	n, err := h.rules.DeleteReactionsFor(c.Request.Context(), userID, c.Query("emoji"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, DeletedResponse{Deleted: n})
}
