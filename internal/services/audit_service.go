// Package services – AuditService
//
// AuditService appends command invocations to the command log and reads
// them back. Entries are immutable: there is no update or delete method,
// and rows only disappear when their user or guild is purged.
package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-rule-store/internal/domain"
	"github.com/tbourn/go-rule-store/internal/repo"
	"github.com/tbourn/go-rule-store/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const auditTracer = "services/AuditService"

// MaxCommandRunes is the width of command_log.command.
const MaxCommandRunes = 100

// AuditService records executed bot commands.
type AuditService struct {
	DB *gorm.DB
}

// Record appends one entry with a server-assigned id and timestamp. Both
// the user and the guild must exist.
func (s *AuditService) Record(ctx context.Context, userID, guildID int64, command string, args []string) (*domain.CommandLog, error) {
	ctx, span := otel.Tracer(auditTracer).Start(ctx, "Record",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Int64("guild.id", guildID),
			attribute.String("command", command),
		),
	)
	defer span.End()

	command = strings.TrimSpace(command)
	if command == "" {
		return nil, ErrEmptyCommand
	}
	if utf8.RuneCountInString(command) > MaxCommandRunes {
		return nil, fmt.Errorf("%w: command exceeds %d characters", ErrTooLong, MaxCommandRunes)
	}
	if userID <= 0 || guildID <= 0 {
		return nil, ErrInvalidID
	}
	e, err := repo.AppendCommand(ctx, s.DB, userID, guildID, command, args)
	return e, translate(err)
}

// List returns a page of entries matching f, newest first, with the total.
func (s *AuditService) List(ctx context.Context, f repo.CommandFilter, page, pageSize int) ([]domain.CommandLog, int64, error) {
	ctx, span := otel.Tracer(auditTracer).Start(ctx, "List",
		trace.WithAttributes(
			attribute.Int64("guild.id", f.GuildID),
			attribute.Int64("user.id", f.UserID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	_, size, offset := utils.Paginate(page, pageSize)
	total, err := repo.CountCommands(ctx, s.DB, f)
	if err != nil {
		return nil, 0, translate(err)
	}
	if total == 0 {
		return []domain.CommandLog{}, 0, nil
	}
	items, err := repo.ListCommandsPage(ctx, s.DB, f, offset, size)
	return items, total, translate(err)
}
