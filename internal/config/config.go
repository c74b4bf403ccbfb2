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

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Guild Birthday"
	AppID          = "com.github.tartampluch.guild-birthday"
	KeyringService = "com.github.tartampluch.guild-birthday"
	LogFileName    = "app.log"
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
	// Used for sensitive files like logs and export artifacts.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure cache and data directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagEnvFile      = "env"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescEnvFile  = "Path to an optional .env file"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Keys & Defaults
// -----------------------------------------------------------------------------

const (
	EnvDatabasePath = "GB_DATABASE_PATH"
	EnvServerPort   = "GB_SERVER_PORT"
	EnvBindAddr     = "GB_BIND_ADDR"
	EnvLanguage     = "GB_LANGUAGE"
	EnvBotToken     = "GB_BOT_TOKEN"
	EnvAMQPURL      = "GB_AMQP_URL"
	EnvAMQPExchange = "GB_AMQP_EXCHANGE"
	EnvAMQPQueue    = "GB_AMQP_QUEUE"

	DefaultDatabasePath = "./data/guild-birthday.db"
	DefaultPort         = "18080"
	LocalhostBindAddr   = "127.0.0.1"
	DefaultLanguage     = "en"
	DefaultAMQPExchange = "guild-birthday"
	DefaultAMQPQueue    = "birthday_announcements"

	// KeyringTokenAccount is the keyring account name used when the bot token
	// is not supplied through the environment.
	KeyringTokenAccount = "bot-token"
)

// SupportedLanguages defines the list of available reply languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Calendar Kernel
// -----------------------------------------------------------------------------

const (
	// YearSlots is the size of the date-index ring. February is modelled with
	// 29 days so the leap slot is always reserved, which keeps the index space
	// identical across years.
	YearSlots = 366

	// Default window policy for the "upcoming" view: 8 back, 22 total.
	// The first emitted index sits one day before the visible 7-day lookback;
	// downstream output depends on this exact offset.
	DefaultScanDaysBefore = 8
	DefaultScanDaysTotal  = 22

	// DefaultRenderCap bounds the upcoming listing. Chosen to stay under the
	// chat platform's message-size limit with margin for framing text.
	DefaultRenderCap = 970
)

// -----------------------------------------------------------------------------
// Output Formats
// -----------------------------------------------------------------------------

const (
	// FormatMonthDay renders a calendar date as "Mar-01".
	FormatMonthDay = "%s-%02d"

	// FormatGroupHeader is the per-date header of the upcoming listing.
	FormatGroupHeader = "● %s:"

	// FormatExportLine is the per-record line of the full text listing.
	FormatExportLine = "● %s: %d %s"

	// FormatNicknameSuffix is appended to an export line when a nickname is set.
	FormatNicknameSuffix = " - Nickname: %s"

	// FormatUserTag renders "username#discriminator".
	FormatUserTag = "%s#%s"

	NameSeparator = ", "
	LineBreak     = "\n"

	// CSV framing (RFC 4180).
	CSVHeader = "UserId,Username,Nickname,MonthDayDisp,Month,Day"
	CRLF      = "\r\n"
)

// MonthAbbrevs maps month 1..12 to the three-letter English abbreviation used
// by the listing formats and the CSV MonthDayDisp column.
var MonthAbbrevs = [13]string{"",
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// -----------------------------------------------------------------------------
// Export Formats & Artifacts
// -----------------------------------------------------------------------------

const (
	ExportFormatText = "text"
	ExportFormatCSV  = "csv"

	ExportFileText = "birthdays.txt"
	ExportFileCSV  = "birthdays.csv"

	// TempFilePattern is passed to os.CreateTemp for export artifacts.
	TempFilePattern = "guild-birthday-export-*"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyUpcomingHeader   = "upcoming_header"
	TKeyTruncationNotice = "truncation_notice"
	TKeyNoUpcoming       = "no_upcoming"
	TKeyListHeader       = "list_header"
	TKeyWhenAnswer       = "when_answer"
	TKeyEvtSummary       = "event_summary"
	TKeyErrUserNotFound  = "err_user_not_found"
	TKeyErrNoBirthday    = "err_no_birthday"
	TKeyErrBadFormat     = "err_bad_format"
	TKeyErrDeliveryPerm  = "err_delivery_permission"
	TKeyErrDeliveryFail  = "err_delivery_failure"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackUpcomingHeader   = "Recent and upcoming birthdays:"
	FallbackTruncationNotice = "Not all birthdays have been shown as there are too many to list."
	FallbackNoUpcoming       = "There are no recent or upcoming birthdays."
	FallbackListHeader       = "Birthdays in %s:"
	FallbackWhenAnswer       = "%s's birthday is on %s."
	FallbackEvtSummary       = "Birthday: %s"
	FallbackGuildName        = "this guild"

	// StubVCalendar is the minimal valid iCalendar object used when a guild
	// has no stored birthdays. Keeps subscribed clients from flagging the
	// feed as invalid.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Guild Birthday//Engine//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "guildbirthday"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour

	// FormatUID expects user id, event year and domain.
	FormatUID = "%d-%d@%s"
)

// -----------------------------------------------------------------------------
// Data Formats
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	PublishTimeout     = 5 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	AddrSeparator      = ":"

	// RouteCalendar serves the per-guild ICS feed.
	RouteCalendar    = "/guilds/{guildID}/calendar.ics"
	PathParamGuildID = "guildID"
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
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	ContentTypeJSON     = "application/json"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidRecord     = "invalid birthday record"
	ErrUserNotFound      = "user not found in guild"
	ErrNoBirthdayData    = "no birthday recorded for user"
	ErrUnsupportedFormat = "unsupported export format"
	ErrDeliveryDenied    = "delivery rejected for missing permission"
	ErrDeliveryFailed    = "delivery failed"
	ErrArtifactCreate    = "failed to create export artifact"
	ErrArtifactWrite     = "failed to write export artifact"
	ErrFeedRender        = "failed to render calendar feed"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrPortNumber        = "server port must be a number"
	ErrPortRange         = "server port must be between 1 and 65535"
	ErrDBPathEmpty       = "configuration error: database path is empty"
	ErrDBOpen            = "failed to open database"
	ErrDBPing            = "failed to reach database"
	ErrDBMigrate         = "failed to run database migrations"
	ErrAMQPScheme        = "AMQP URL scheme must be amqp or amqps"
	ErrAMQPDial          = "failed to dial AMQP broker"
	ErrAMQPChannel       = "failed to open AMQP channel"
	ErrAMQPDeclare       = "failed to declare AMQP topology"
	ErrAMQPPublish       = "failed to publish announcement"
	ErrListGuilds        = "failed to list guilds for daily pass"
	ErrDailyPass         = "daily pass failed for guild"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrVCardParse        = "failed to parse vCard stream"
	ErrDateParse         = "unable to parse date"
	ErrTokenMissing      = "bot token not found in environment or keyring"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrCreateDir         = "could not create app directory"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrLocNotInit        = "localizer not initialized"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgUnknownGuild = "Unknown guild."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting      = "Starting application"
	MsgAppStop          = "Application stopped gracefully"
	MsgServerListen     = "HTTP feed server listening"
	MsgServerStop       = "Shutting down HTTP feed server..."
	MsgCacheUpdated     = "Calendar feed cache updated"
	MsgWorkerStart      = "Daily announcement worker started"
	MsgWorkerStop       = "Worker stopping due to context cancellation"
	MsgWorkerTick       = "Running daily birthday pass"
	MsgWorkerPassDone   = "Daily birthday pass finished"
	MsgUpcomingDone     = "Upcoming listing rendered"
	MsgBdayToday        = "Birthday found today"
	MsgAnnouncePub      = "Published birthday announcement"
	MsgAnnounceOff      = "Announcements disabled, no AMQP URL configured"
	MsgStoreReady       = "Birthday store ready"
	MsgMigrated         = "Database migrations applied"
	MsgSkippedCard      = "Skipping malformed vCard"
	MsgSkippedDate      = "Skipping invalid date format"
	MsgSkippedNoMatch   = "Skipping card with no roster match"
	MsgSkippedMember    = "Skipping record of departed member"
	MsgImported         = "vCard import finished"
	MsgArtifactCleanup  = "Removed export artifact"
	MsgExportDelivered  = "Export delivered"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgTokenFromKeyring = "Bot token resolved from OS keyring"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyGuild     = "guild_id"
	LogKeyUser      = "user_id"
	LogKeyName      = "name"
	LogKeyMonth     = "month"
	LogKeyDay       = "day"
	LogKeyIndex     = "date_index"
	LogKeyCount     = "count"
	LogKeyFormat    = "format"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyAddr      = "addr"
	LogKeyPath      = "path"
	LogKeyExchange  = "exchange"
	LogKeyQueue     = "queue"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeyMatched   = "matched"
	LogKeySkipped   = "skipped"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine   = "engine"
	CompServer   = "server"
	CompStore    = "store"
	CompWorker   = "worker"
	CompCommands = "commands"
	CompAnnounce = "announce"
	CompI18n     = "i18n"
	CompMain     = "main"
)
