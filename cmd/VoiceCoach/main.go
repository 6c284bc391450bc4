package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/coach"
	"github.com/StrideLab/VoiceCoach/internal/genai"
	"github.com/StrideLab/VoiceCoach/internal/lockfile"
	"github.com/StrideLab/VoiceCoach/internal/models"
	"github.com/StrideLab/VoiceCoach/internal/recorder"
	"github.com/StrideLab/VoiceCoach/internal/settings"
	"github.com/StrideLab/VoiceCoach/internal/simulator"
	"github.com/StrideLab/VoiceCoach/internal/speech"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for VoiceCoach state data
	DefaultStateDir = "/var/lib/voicecoach"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "voicecoach.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if err := run(flags); err != nil {
		slog.Error("VoiceCoach failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("VoiceCoach exited successfully")
}

// Config holds environment configuration
type Config struct {
	SettingsPath string
	DatabaseURL  string
	StateDir     string
	OpenAIKey    string
}

// Flags holds command line flag values
type Flags struct {
	settingsPath *string
	stateDir     *string
	dbDSN        *string
	openaiKey    *string
	duration     *time.Duration
}

// initializeLogger sets up structured logging on stderr, leaving stdout to
// the spoken coaching output. Level comes from $VOICECOACH_LOG_LEVEL.
func initializeLogger() {
	level := parseLogLevel(os.Getenv("VOICECOACH_LOG_LEVEL"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// parseLogLevel maps a level name to its slog level, defaulting to info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		SettingsPath: os.Getenv("VOICECOACH_SETTINGS"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     os.Getenv("VOICECOACH_STATE_DIR"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No VOICECOACH_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("VOICECOACH_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"VOICECOACH_SETTINGS", config.SettingsPath,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"VOICECOACH_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		settingsPath: flag.String("settings", config.SettingsPath, "path to the YAML settings file (overrides $VOICECOACH_SETTINGS)"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for VoiceCoach data (overrides $VOICECOACH_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "session store DSN, SQLite path or Postgres URL (overrides $DATABASE_URL)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key for the spoken debrief (overrides $OPENAI_API_KEY)"),
		duration:     flag.Duration("duration", 0, "end the simulated run after this long (0 runs until interrupted)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"settingsPath", *flags.settingsPath,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"duration", *flags.duration)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "dsn_updated", true, "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if *flags.dbDSN == "" || recorder.DetectDSNType(*flags.dbDSN) != recorder.DSNTypeSQLite {
		return nil
	}
	stateDir := filepath.Dir(*flags.dbDSN)
	slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
	if err := os.MkdirAll(stateDir, recorder.DefaultDirPermissions); err != nil {
		slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
		return err
	}
	return nil
}

// buildRecorderOptions constructs session store configuration options
func buildRecorderOptions(flags Flags) []recorder.Option {
	var recorderOpts []recorder.Option
	switch recorder.DetectDSNType(*flags.dbDSN) {
	case recorder.DSNTypePostgres:
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql", "dsn_set", true)
		recorderOpts = append(recorderOpts, recorder.WithPostgresDSN(*flags.dbDSN))
	case recorder.DSNTypeSQLite:
		slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
		recorderOpts = append(recorderOpts, recorder.WithSQLiteDSN(*flags.dbDSN))
	default:
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return recorderOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	return genaiOpts
}

// run wires the coaching stack around a simulated run and blocks until the
// session ends by signal, timeout, or a spoken stop command.
func run(flags Flags) error {
	cfg, err := settings.Load(*flags.settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// A second process writing the same SQLite store corrupts it, so hold
	// an exclusive lock on its directory for the life of the session.
	if recorder.DetectDSNType(*flags.dbDSN) == recorder.DSNTypeSQLite {
		lock, err := lockfile.Acquire(filepath.Dir(*flags.dbDSN))
		if err != nil {
			return fmt.Errorf("failed to lock state directory: %w", err)
		}
		defer lock.Release()
	}

	store, err := recorder.NewStore(buildRecorderOptions(flags)...)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	sink := speech.NewConsoleSink()
	source := speech.NewReaderSource(os.Stdin)

	coachOpts := []coach.Option{
		coach.WithRecorder(store),
		coach.WithSource(source),
	}
	if client, err := genai.NewClient(buildGenAIOptions(flags)...); err != nil {
		slog.Warn("GenAI debrief unavailable, using the static summary", "error", err)
	} else {
		coachOpts = append(coachOpts, coach.WithDebriefGenerator(client))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx, endRun := runContext(ctx, *flags.duration)
	defer endRun()

	sim := simulator.New(simulator.WithUnit(cfg.DistanceUnit))
	coachOpts = append(coachOpts, coach.WithCommandFunc(func(kind models.IntentKind) {
		switch kind {
		case models.IntentCommandPause:
			sim.Pause()
		case models.IntentCommandResume:
			sim.Resume()
		case models.IntentCommandStop:
			endRun()
		}
	}))

	c := coach.NewCoordinator(cfg, sink, coachOpts...)
	source.SetUnheardFunc(func(line string) {
		c.HandleTranscript(line)
	})

	session := c.StartSession()
	slog.Info("VoiceCoach session started", "session", session, "unit", cfg.DistanceUnit)

	sim.Run(runCtx, simulator.DefaultStep, c.UpdateTelemetry)

	// The run context is spent; give the debrief its own deadline.
	debriefCtx, cancelDebrief := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelDebrief()
	summary := c.FinishSession(debriefCtx)
	slog.Info("VoiceCoach session finished",
		"session", summary.SessionID,
		"distance", models.SpokenDistance(summary.Distance, summary.Unit),
		"splits", len(summary.Splits),
		"prompts_spoken", summary.PromptsSpoken)
	return nil
}

// runContext bounds the session by the optional duration flag.
func runContext(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(parent, d)
	}
	return context.WithCancel(parent)
}
