package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/cli/events"
	"github.com/julianstephens/studyplan/internal/cli/plans"
	"github.com/julianstephens/studyplan/internal/cli/settings"
	"github.com/julianstephens/studyplan/internal/cli/system"
	"github.com/julianstephens/studyplan/internal/cli/tasks"
	"github.com/julianstephens/studyplan/internal/constants"
	apperrors "github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/keyring"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/metrics"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite database path, PostgreSQL connection string, or 'keyring'. PostgreSQL credentials must NOT be embedded in the connection string; use .pgpass or the OS keyring." env:"STUDYPLAN_CONFIG" default:"${config_path}"`
	Profile string `help:"Keyring profile used with --config keyring." env:"STUDYPLAN_PROFILE" default:"${profile}"`
	Debug   bool   `help:"Enable debug logging to stderr." env:"STUDYPLAN_DEBUG"`
	LogJSON bool   `help:"Write logs as JSON lines." name:"log-json" env:"STUDYPLAN_LOG_JSON"`
	Yes     bool   `short:"y" help:"Answer yes to confirmation prompts."`

	Init system.InitCmd `cmd:"" help:"Initialize studyplan storage."`
	Task struct {
		Add      tasks.TaskAddCmd      `cmd:"" help:"Add a task."`
		List     tasks.TaskListCmd     `cmd:"" help:"List tasks."`
		Complete tasks.TaskCompleteCmd `cmd:"" help:"Mark a task done or advance a recurring task."`
		Delete   tasks.TaskDeleteCmd   `cmd:"" help:"Delete a task."`
		Restore  tasks.TaskRestoreCmd  `cmd:"" help:"Restore a deleted task."`
	} `cmd:"" help:"Manage tasks."`
	Event struct {
		Add    events.EventAddCmd    `cmd:"" help:"Add a fixed calendar event."`
		List   events.EventListCmd   `cmd:"" help:"List upcoming events."`
		Delete events.EventDeleteCmd `cmd:"" help:"Delete an event."`
	} `cmd:"" help:"Manage fixed calendar events."`
	Plan     plans.PlanCmd     `cmd:"" help:"Preview and save a new study schedule."`
	Schedule plans.ScheduleCmd `cmd:"" help:"Show the current schedule." default:"1"`
	Session  struct {
		Lock plans.SessionLockCmd `cmd:"" help:"Pin a session so recomputes keep it."`
		Move plans.SessionMoveCmd `cmd:"" help:"Move a session to a new start time."`
	} `cmd:"" help:"Adjust scheduled sessions."`
	Feedback plans.FeedbackCmd       `cmd:"" help:"Record how a session went."`
	Learn    plans.LearnCmd          `cmd:"" help:"Fold recorded feedback into preferences and replan."`
	Prefs    settings.PrefsCmd       `cmd:"" help:"Show or adjust scoring preferences."`
	Settings settings.SettingsCmd    `cmd:"" help:"Show or change settings."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
	Watch system.WatchCmd `cmd:"" help:"Keep the schedule current in the background."`
}

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Study session planner for courses, homework and exams"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":       constants.Version,
			"config_path":   constants.DefaultConfigPath,
			"profile":       keyring.DefaultProfile,
			"poll_interval": constants.WatchPollInterval.String(),
		},
	)

	home, err := os.UserHomeDir()
	if err != nil {
		apperrors.Fatal(fmt.Errorf("failed to determine home directory: %w", err))
	}
	configDir := filepath.Join(home, ".config", constants.AppName)

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Stderr:    strings.HasPrefix(command, "watch"),
		JSON:      CLI.LogJSON,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := cli.OpenStore(CLI.Config, CLI.Profile, home)
	if err != nil {
		apperrors.Fatal(err)
	}
	if path := store.GetConfigPath(); strings.HasSuffix(path, ".db") {
		configDir = filepath.Dir(path)
	}

	appCtx := &cli.Context{
		Store:     store,
		ConfigDir: configDir,
		Profile:   CLI.Profile,
		Metrics:   metrics.New(),
		Assume:    CLI.Yes,
	}

	// init and keyring manage their own storage
	if !strings.HasPrefix(command, "init") && !strings.HasPrefix(command, "keyring") {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}
	defer store.Close()

	if code := apperrors.Report(os.Stderr, ctx.Run(appCtx)); code != 0 {
		store.Close()
		os.Exit(code)
	}
}
