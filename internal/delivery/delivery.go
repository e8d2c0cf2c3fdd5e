// Package delivery hands notifications and digests to external messaging
// channels. The engine only produces requests; senders here decide how they
// leave the process.
package delivery

import (
	"context"
	"log/slog"

	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

// Notifier delivers interactive notifications.
type Notifier interface {
	Notify(ctx context.Context, userID string, n engine.NotificationRequest) error
}

// Mailer delivers digest emails.
type Mailer interface {
	SendDigest(ctx context.Context, userID, recipient string, email engine.DigestEmail) error
}

// Sender can deliver both.
type Sender interface {
	Notifier
	Mailer
}

// LogSender writes every delivery to the structured log. It is the sender used
// when no external channel is configured.
type LogSender struct {
	Logger *slog.Logger
}

// NewLogSender returns a sender logging through the default logger.
func NewLogSender() *LogSender {
	return &LogSender{Logger: slog.Default()}
}

func (s *LogSender) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Notify logs the notification.
func (s *LogSender) Notify(ctx context.Context, userID string, n engine.NotificationRequest) error {
	s.logger().InfoContext(ctx, config.MsgNotifSent,
		config.LogKeyComponent, config.CompDelivery,
		config.LogKeyUser, userID,
		config.LogKeyFriend, n.FriendID,
		config.LogKeyKind, string(n.Kind),
		config.LogKeyTitle, n.Title,
		config.LogKeyValue, n.Body,
	)
	return nil
}

// SendDigest logs the digest.
func (s *LogSender) SendDigest(ctx context.Context, userID, recipient string, email engine.DigestEmail) error {
	s.logger().InfoContext(ctx, config.MsgDigestSent,
		config.LogKeyComponent, config.CompDelivery,
		config.LogKeyUser, userID,
		config.LogKeyName, recipient,
		config.LogKeySubject, email.Subject,
		config.LogKeySizeBytes, len(email.Body),
	)
	return nil
}
