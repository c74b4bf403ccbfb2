package commands

import (
	"context"
	"errors"

	"github.com/tartampluch/guild-birthday/internal/config"
)

// ErrPermissionDenied is wrapped by Deliverer implementations when the
// platform refuses an upload for a missing permission (typically
// attach-files). The handler turns it into a remediation reply instead of an
// operator-facing failure.
var ErrPermissionDenied = errors.New(config.ErrDeliveryDenied)

// Deliverer is the external chat delivery collaborator. Implementations own
// their retries and timeouts; callers only classify the outcome.
type Deliverer interface {
	SendMessage(ctx context.Context, channelID uint64, text string) error
	SendFile(ctx context.Context, channelID uint64, path, filename string) error
}
