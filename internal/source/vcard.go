package source

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

// VCardSource locates a vCard collection: a local file or a remote URL.
// Path wins when both are set.
type VCardSource struct {
	Path string
	URL  string
	User string
	Pass string

	// Fetcher is required for URL sources.
	Fetcher VCardFetcher
}

// Load opens the collection and decodes every card into a friend.
func (s VCardSource) Load(ctx context.Context) ([]engine.Friend, error) {
	reader, err := s.open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardOpen, err)
	}
	defer func() { _ = reader.Close() }()

	start := time.Now()
	friends, err := DecodeVCards(ctx, reader)
	if err == nil {
		slog.Debug("vCard decoding finished",
			config.LogKeyComponent, config.CompSource,
			config.LogKeyCount, len(friends),
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	}
	return friends, err
}

func (s VCardSource) open(ctx context.Context) (io.ReadCloser, error) {
	switch {
	case s.Path != "":
		return os.Open(s.Path)
	case s.URL != "":
		if s.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return s.Fetcher.Fetch(ctx, s.URL, s.User, s.Pass)
	default:
		return nil, errors.New(config.ErrImportMissing)
	}
}

// DecodeVCards turns a vCard stream into friends of the default tier with
// notifications enabled. Malformed cards are skipped; the birthday (BDAY) and
// anniversary (ANNIVERSARY) are kept when they parse.
func DecodeVCards(ctx context.Context, r io.Reader) ([]engine.Friend, error) {
	decoder := vcard.NewDecoder(r)
	var friends []engine.Friend

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep going to recover as many cards as possible.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompSource,
				config.LogKeyError, err)
			continue
		}

		friends = append(friends, cardToFriend(card))
	}
	return engine.NormalizeFriends(friends), nil
}

func cardToFriend(card vcard.Card) engine.Friend {
	f := engine.Friend{
		Name:                        cardName(card),
		Tier:                        engine.TierRegular,
		EnableReminders:             true,
		EnableBirthdayNotifications: true,
	}

	var bdayValue string
	if bday := card.Get(config.VCardBDAY); bday != nil && bday.Value != "" {
		bdayValue = bday.Value
		birthDate, yearKnown, err := engine.ParseDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompSource,
				config.LogKeyValue, bday.Value)
		} else {
			f.Birthday, f.BirthYearKnown = birthDate, yearKnown
		}
	}

	if ann := card.Get(config.VCardAnniversary); ann != nil && ann.Value != "" {
		if date, _, err := engine.ParseDate(ann.Value); err == nil {
			f.ImportantDates = append(f.ImportantDates, engine.ImportantDate{
				Date:        date,
				Description: config.DefaultAnniversaryLabel,
				Recurrence:  engine.RecurrenceYearly,
			})
		}
	}

	f.ID = cardID(card, f.Name, bdayValue)
	return f
}

// cardName prefers FN (formatted) over N (structured).
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

// cardID uses the card UID, or a hash of the name and birthday so that
// re-importing the same address book updates rather than duplicates.
func cardID(card vcard.Card, name, bday string) string {
	if uid := card.Get(config.VCardUID); uid != nil && uid.Value != "" {
		return uid.Value
	}
	input := fmt.Sprintf(config.FormatHashInput, name, bday, "", config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatFriendUID, hash[:config.UIDHashLength])
}
