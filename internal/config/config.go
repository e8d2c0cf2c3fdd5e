package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP clients (vCard fetcher, webhook sender).
var UserAgent = "Go-Friends/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Friends"
	AppID             = "com.github.tartampluch.go-friends"
	BinaryName        = "go-friends"
	KeyringService    = "com.github.tartampluch.go-friends"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	DBFileName        = "friends.db"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the database file.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug       = "debug"
	FlagFriends     = "friends"
	FlagSettings    = "settings"
	FlagDB          = "db"
	FlagUser        = "user"
	FlagPort        = "port"
	FlagHorizon     = "horizon"
	FlagNow         = "now"
	FlagInterval    = "interval"
	FlagWebhook     = "webhook"
	FlagVCF         = "vcf"
	FlagURL         = "url"
	FlagWebUser     = "web-user"
	FlagPassword    = "password"
	FlagFriendID    = "friend"
	FlagMethod      = "method"
	FlagNotes       = "notes"
	FlagDate        = "date"
	FlagTrigger     = "reminder-trigger"
	FlagSendEmpty   = "send-empty"
	FlagFrequency   = "email-frequency"
	FlagAt          = "at"
	FlagSavePass    = "save-password"
	FlagDescDebug   = "Enable debug logging"
	FlagDescFriends = "Path to a JSON friend snapshot (overrides --db)"
	FlagDescSet     = "Path to a JSON settings file"
	FlagDescDB      = "Path to the SQLite friend store"
	FlagDescUser    = "User ID whose friends are loaded from the store"
	FlagDescPort    = "Port to serve the calendar feed on"
	FlagDescHorizon = "Look-ahead window in days"
	FlagDescNow     = "Ignore quiet hours and the preferred time for this run"
	FlagDescInt     = "Polling interval"
	FlagDescWebhook = "Deliver notifications and digests to this webhook URL"
	FlagDescVCF     = "Local vCard file to import"
	FlagDescURL     = "CardDAV/WebDAV URL to import vCards from"
	FlagDescWebUser = "HTTP Basic Auth username for --url"
	FlagDescPass    = "HTTP Basic Auth password (defaults to the OS keyring)"
	FlagDescFriend  = "Friend ID"
	FlagDescMethod  = "Contact method (Text, Call, Email, ...)"
	FlagDescNotes   = "Optional notes"
	FlagDescDate    = "Contact date (YYYY-MM-DD), defaults to today"
	FlagDescTrigger = "ISO8601 alarm trigger for feed events (e.g. -P1D)"
	FlagDescEmpty   = "Queue a digest even when nothing is due"
	FlagDescFreq    = "Digest frequency of the users to process"
	FlagDescAt      = "Evaluate as if it were this instant (RFC3339)"
	FlagDescSave    = "Store --password in the OS keyring for later imports"
)

// MsgVersionOutput formats the version command: app, version, commit, os, arch.
const MsgVersionOutput = "%s version %s (%s, %s/%s)\n"

// Command output layouts.
const (
	FormatNotificationLine = "[%s] %s - %s\n"
	FormatDigestOutput     = "Subject: %s\n\n%s\n"
	FormatImportSummary    = "Imported %d friends for %s\n"
	FormatLogSummary       = "Logged %s with %s on %s\n"
	FormatDashboard        = "\nAverage consistency: %d%%\tOn track: %d%%\n"
	StatusHeader           = "ID\tNAME\tTIER\tEVERY\tLAST CONTACT\tDAYS\tDUE\tSTREAK\tSCORE"
	FormatStatusRow        = "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%d\t%d%%\n"
	StatusNever            = "never"
	StatusNone             = "-"
	StatusDue              = "yes"
	StatusNotDue           = "no"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort            = "18081"
	DefaultLanguage        = "en"
	DefaultLeapYear        = 2000 // Leap year anchor for year-less dates like --02-29
	DefaultQuietStart      = "22:00"
	DefaultQuietEnd        = "08:00"
	DefaultPreferredTime   = "09:00"
	DefaultSoundEnabled    = true
	DefaultHorizonDays     = 30
	DefaultDigestHorizon   = 7
	DefaultFeedHorizon     = 365
	DefaultPollInterval    = time.Minute
	DefaultFeedRefresh     = 15 * time.Minute
	DefaultEmailFrequency  = "daily"
	DefaultContactMethod   = "Text"
	UIDSalt                = "go-friends-v1-" // Salt for deterministic feed UIDs
	PreferredTimeTolerance = 1                // Minutes either side of the preferred time
	StreakToleranceDays    = 1
)

// Reminder cadence in days.
const (
	IntervalWeekly    = 7
	IntervalBiWeekly  = 14
	IntervalMonthly   = 30
	IntervalQuarterly = 90
	IntervalFallback  = IntervalMonthly
)

// SupportedLanguages lists the embedded locales (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Friends//Engine//EN"
	ICalCalName   = "Friends"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gofriends"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRRule       = "RRULE"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	RRuleYearly  = "FREQ=YEARLY"
	RRuleMonthly = "FREQ=MONTHLY"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"
	VCardUID  = "UID"

	VCardAnniversary        = "ANNIVERSARY"
	DefaultAnniversaryLabel = "Anniversary"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted for birthdays, interactions and important dates.
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatTimestamp = time.RFC3339Nano
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	ClockFormat         = "15:04"

	MinPort = 1
	MaxPort = 65535

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s|%s"
	FormatUID       = "%s@%s"
	FormatFriendUID = "vcard-%x"

	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// Notified key layouts: kind, friend ID, then the occurrence identity.
const (
	KeyFormatMessage       = "message-%s"
	KeyFormatBirthday      = "birthday-%s-%s"
	KeyFormatImportantDate = "importantDate-%s-%s-%s"
	KeyPrefixSeparator     = "-"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteCalendar       = "/calendar.ics"
	RouteRoot           = "/"
	RouteHealth         = "/healthz"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Delivery Webhook Events
// -----------------------------------------------------------------------------

const (
	EventNotification = "friends.notification"
	EventDigest       = "friends.digest"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrSnapshotMissing = "configuration error: either --friends or --db with --user is required"
	ErrUserRequired    = "configuration error: --user is required for this command"
	ErrFriendRequired  = "configuration error: --friend is required"
	ErrAtParse         = "invalid --at instant (RFC3339 expected)"
	ErrNotifyFailed    = "some notifications could not be delivered"
	ErrDigestFailed    = "some digests could not be delivered"
	ErrImportMissing   = "configuration error: either --vcf or --url is required"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrVCardOpen       = "failed to open vCard source"
	ErrFetcherMissing  = "no fetcher configured for remote vCards"
	ErrFetchRequest    = "failed to create request"
	ErrFetchNetwork    = "network error during fetch"
	ErrFetchStatus     = "server returned unexpected status"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrClockParse      = "unable to parse time of day (HH:MM)"
	ErrSettingsRead    = "failed to read settings file"
	ErrSettingsDecode  = "failed to decode settings file"
	ErrSnapshotRead    = "failed to read friend snapshot"
	ErrSnapshotDecode  = "failed to decode friend snapshot"
	ErrStoreOpen       = "failed to open friend store"
	ErrStoreQuery      = "friend store query failed"
	ErrStoreWrite      = "friend store write failed"
	ErrRecordNotFound  = "record not found"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrDeliveryFailed  = "delivery failed"
	ErrDeliveryStatus  = "delivery endpoint returned unexpected status"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting      = "Starting application"
	MsgAppStop          = "Application stopped gracefully"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Calendar cache updated"
	MsgFeedRefreshed    = "Calendar feed refreshed"
	MsgSkippedCard      = "Skipping malformed vCard"
	MsgSkippedDate      = "Skipping invalid date format"
	MsgSkippedInteract  = "Dropping interaction without a valid date"
	MsgSnapshotLoaded   = "Friend snapshot loaded"
	MsgSuppressed       = "Notification suppressed"
	MsgAdmitted         = "Notification admitted"
	MsgKeyCleared       = "Interaction state changed, notification key cleared"
	MsgDigestQueued     = "Digest queued"
	MsgDigestSkipped    = "Nothing due, digest skipped"
	MsgDigestSent       = "Digest delivered"
	MsgDigestRun        = "Digest run finished"
	MsgNotifSent        = "Notification delivered"
	MsgWatchStart       = "Watcher started"
	MsgWatchStop        = "Watcher stopping due to context cancellation"
	MsgImported         = "Friends imported"
	MsgInteractionAdded = "Interaction logged"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgPassFail         = "Password retrieval failed (might be empty)"
	MsgPassSaveFail     = "Could not store the password in the keyring"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgMigration        = "Applied schema migration"
	MsgCheckDone        = "Check finished"
	MsgWatchTick        = "Watcher evaluation failed"
	MsgStoreOpened      = "Friend store opened"
)

// -----------------------------------------------------------------------------
// Fallback Texts (English, used when no translation is available)
// -----------------------------------------------------------------------------

const (
	FallbackMessageTitle  = "Time to message a friend!"
	FallbackMessageBody   = "Don't forget to message %s!"
	FallbackBirthdayTitle = "Upcoming Birthday!"
	FallbackBirthdayBody  = "%s's birthday is on %s!"
	FallbackDateTitle     = "Upcoming Important Date!"
	FallbackDateBody      = "%s's %s is on %s!"

	FallbackDigestSubject   = "Friends Reminder - Daily Digest"
	FallbackDigestGreeting  = "Hello! Here's your daily Friends Reminder digest:"
	FallbackDigestContacts  = "📱 Friends to Message:"
	FallbackDigestBirthdays = "🎂 Upcoming Birthdays:"
	FallbackDigestDates     = "📅 Upcoming Important Dates:"
	FallbackDigestContact   = "• %s"
	FallbackDigestBirthday  = "• %s - %d %s away"
	FallbackDigestDate      = "• %s - %s in %d %s"
	FallbackDigestCaughtUp  = "✅ All caught up! No urgent reminders today."
	FallbackDigestSignOff   = "Keep your friendships strong! 💪"
	FallbackDaySingular     = "day"
	FallbackDayPlural       = "days"
	FallbackName            = "Unknown"
	FallbackFeedBirthday    = "Birthday: %s"
	FallbackFeedBirthdayAge = "Birthday: %s (%d)"

	// StubVCalendar is the minimal valid iCalendar object served when nothing is upcoming.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyMessageTitle    = "notif_message_title"
	TKeyMessageBody     = "notif_message_body" // Requires Name
	TKeyBirthdayTitle   = "notif_birthday_title"
	TKeyBirthdayBody    = "notif_birthday_body" // Requires Name, Date
	TKeyDateTitle       = "notif_date_title"
	TKeyDateBody        = "notif_date_body" // Requires Name, Description, Date
	TKeyDigestSubject   = "digest_subject"
	TKeyDigestGreeting  = "digest_greeting"
	TKeyDigestContacts  = "digest_section_contacts"
	TKeyDigestBirthdays = "digest_section_birthdays"
	TKeyDigestDates     = "digest_section_dates"
	TKeyDigestContact   = "digest_line_contact"  // Requires Name
	TKeyDigestBirthday  = "digest_line_birthday" // Requires Name, Count (plural)
	TKeyDigestDate      = "digest_line_date"     // Requires Name, Description, Count (plural)
	TKeyDigestCaughtUp  = "digest_all_caught_up"
	TKeyDigestSignOff   = "digest_sign_off"
	TKeyFeedBirthday    = "feed_birthday"     // Requires Name
	TKeyFeedBirthdayAge = "feed_birthday_age" // Requires Name, Age
	TKeyFormatDate      = "format_date_short" // Go date layout for message bodies

	// Template data fields shared by the messages above.
	TDataName        = "Name"
	TDataDate        = "Date"
	TDataDescription = "Description"
	TDataCount       = "Count"
	TDataAge         = "Age"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyFriend    = "friend_id"
	LogKeyKind      = "kind"
	LogKeyReason    = "reason"
	LogKeyTitle     = "title"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyValue     = "value"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyStats     = "stats"
	LogKeyTotal     = "total"
	LogKeyQueued    = "queued"
	LogKeySkipped   = "skipped"
	LogKeyVersion   = "version"
	LogKeyDuration  = "duration_ms"
	LogKeyPath      = "path"
	LogKeyDigestID  = "digest_id"
	LogKeyEvent     = "event"
	LogKeySubject   = "subject"

	// Startup Info Keys
	LogKeyBuild = "build"
	LogKeyApp   = "app"
	LogKeyGoVer = "go_version"
	LogKeyEnv   = "env"
	LogKeyOS    = "os"
	LogKeyArch  = "arch"
	LogKeyPID   = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain     = "main"
	CompCLI      = "cli"
	CompEngine   = "engine"
	CompGate     = "gate"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompSource   = "source"
	CompStore    = "store"
	CompDelivery = "delivery"
	CompWatcher  = "watcher"
	CompDigest   = "digest"
	CompI18n     = "i18n"
)
