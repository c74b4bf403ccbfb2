// Package commands wires the engine operations to the chat command surface:
// it owns reply wording, the error taxonomy, and the lifetime of export
// artifacts. Parsing and permission checks happen in the platform glue
// before a handler is invoked.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/engine"
	"github.com/tartampluch/guild-birthday/internal/messages"
)

// BirthdayService is the slice of the engine the handlers consume.
type BirthdayService interface {
	Upcoming(ctx context.Context, guildID uint64) (string, error)
	List(ctx context.Context, guildID uint64) (string, error)
	When(ctx context.Context, guildID uint64, query string) (string, error)
	Export(ctx context.Context, guildID uint64, format string) (string, []byte, error)
}

// Handler executes one chat command end to end: engine call, reply wording,
// delivery.
type Handler struct {
	Service BirthdayService
	Deliver Deliverer
	Loc     *messages.Localizer
}

// Upcoming posts the bounded listing of birthdays around today.
func (h *Handler) Upcoming(ctx context.Context, guildID, channelID uint64) error {
	out, err := h.Service.Upcoming(ctx, guildID)
	if err != nil {
		return err
	}
	return h.Deliver.SendMessage(ctx, channelID, out)
}

// List posts the full plain-text listing.
func (h *Handler) List(ctx context.Context, guildID, channelID uint64) error {
	out, err := h.Service.List(ctx, guildID)
	if err != nil {
		return err
	}
	return h.Deliver.SendMessage(ctx, channelID, out)
}

// When answers a birthday lookup. Resolution failures are user mistakes, not
// operator errors: they become localized replies and the handler returns nil.
func (h *Handler) When(ctx context.Context, guildID, channelID uint64, query string) error {
	out, err := h.Service.When(ctx, guildID, query)
	switch {
	case errors.Is(err, engine.ErrUserNotFound):
		return h.Deliver.SendMessage(ctx, channelID, h.Loc.Get(config.TKeyErrUserNotFound))
	case errors.Is(err, engine.ErrNoBirthdayData):
		return h.Deliver.SendMessage(ctx, channelID, h.Loc.Get(config.TKeyErrNoBirthday))
	case err != nil:
		return err
	}
	return h.Deliver.SendMessage(ctx, channelID, out)
}

// Export renders the full record set into a temporary file and hands it to
// the delivery collaborator. The artifact is removed on every exit path,
// including permission refusals and unexpected delivery failures.
func (h *Handler) Export(ctx context.Context, guildID, channelID uint64, format string) error {
	filename, content, err := h.Service.Export(ctx, guildID, format)
	if errors.Is(err, engine.ErrUnsupportedFormat) {
		return h.Deliver.SendMessage(ctx, channelID, h.Loc.Get(config.TKeyErrBadFormat))
	}
	if err != nil {
		return err
	}

	log := slog.With(
		config.LogKeyComponent, config.CompCommands,
		config.LogKeyGuild, guildID,
		config.LogKeyFormat, format,
	)

	path, err := writeArtifact(content)
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(path)
		log.Debug(config.MsgArtifactCleanup, config.LogKeyFile, path)
	}()

	err = h.Deliver.SendFile(ctx, channelID, path, filename)
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return h.Deliver.SendMessage(ctx, channelID, h.Loc.Get(config.TKeyErrDeliveryPerm))
	case err != nil:
		log.Error(config.ErrDeliveryFailed, config.LogKeyError, err)
		return h.Deliver.SendMessage(ctx, channelID, h.Loc.Get(config.TKeyErrDeliveryFail))
	}

	log.Info(config.MsgExportDelivered, config.LogKeySizeBytes, len(content))
	return nil
}

// writeArtifact stores the export content in a private temporary file and
// returns its path. The caller owns removal.
func writeArtifact(content []byte) (string, error) {
	f, err := os.CreateTemp("", config.TempFilePattern)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrArtifactCreate, err)
	}
	path := f.Name()

	if err := f.Chmod(config.FilePermUserRW); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: %w", config.ErrArtifactCreate, err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: %w", config.ErrArtifactWrite, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: %w", config.ErrArtifactWrite, err)
	}
	return path, nil
}
