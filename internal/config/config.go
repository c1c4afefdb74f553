package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

type Config struct {
	ESPN        ESPN
	Store       Store
	Analysis    Analysis
	TelegramBot TelegramBot
	Schedule    Schedule
	Server      Server
}

type ESPN struct {
	Year     string `envconfig:"YEAR" required:"true"`
	LeagueID string `envconfig:"LEAGUE_ID" required:"true"`
	SWID     string `envconfig:"SWID"`
	ESPNS2   string `envconfig:"ESPN_S2"`
	BaseURL  string `envconfig:"ESPN_BASE_URL" default:"http://games.espn.com/ffl"`
}

type Store struct {
	DBPath string `envconfig:"DB_PATH" default:"ffstats.sqlite"`
}

type Analysis struct {
	Weeks     Weeks   `envconfig:"WEEKS" default:"1"`
	Samples   int     `envconfig:"BOOTSTRAP_SAMPLES" default:"10000"`
	Alpha     float64 `envconfig:"BOOTSTRAP_ALPHA" default:"0.05"`
	Workers   int     `envconfig:"BOOTSTRAP_WORKERS" default:"4"`
	Seed      uint64  `envconfig:"BOOTSTRAP_SEED"`
	OutputDir string  `envconfig:"OUTPUT_DIR" default:"out"`
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

// Schedule holds standard five-field cron expressions for the daemon jobs.
type Schedule struct {
	Location string `envconfig:"SCHEDULE_TZ" default:"America/Chicago"`
	Refresh  string `envconfig:"REFRESH_CRON" default:"30 7 * * 2"`
	Bias     string `envconfig:"BIAS_CRON" default:"30 7 * * 3"`
}

type Server struct {
	HealthAddr string `envconfig:"HEALTH_ADDR" default:":80"`
}

// Weeks decodes "1-3", "1,2,5" or a mix of both.
type Weeks []int

func (w *Weeks) Decode(value string) error {
	weeks, err := ParseWeeks(value)
	if err != nil {
		return err
	}
	*w = weeks
	return nil
}

func ParseWeeks(value string) ([]int, error) {
	var weeks []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("week %q: %w", part, err)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("week %q: %w", part, err)
			}
		}
		if first < 1 || last < first {
			return nil, fmt.Errorf("week %q: invalid range", part)
		}
		for week := first; week <= last; week++ {
			weeks = append(weeks, week)
		}
	}
	if len(weeks) == 0 {
		return nil, fmt.Errorf("no weeks in %q", value)
	}
	return weeks, nil
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Analysis.Samples < 1 {
		return fmt.Errorf("BOOTSTRAP_SAMPLES must be positive, got %d", c.Analysis.Samples)
	}
	if c.Analysis.Alpha <= 0 || c.Analysis.Alpha >= 1 {
		return fmt.Errorf("BOOTSTRAP_ALPHA must be in (0, 1), got %v", c.Analysis.Alpha)
	}
	for name, spec := range map[string]string{"REFRESH_CRON": c.Schedule.Refresh, "BIAS_CRON": c.Schedule.Bias} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// RequireBot reports whether the Telegram settings needed by the daemon are set.
func (c *Config) RequireBot() error {
	if c.TelegramBot.Token == "" || c.TelegramBot.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_TOKEN and CHAT_ID are required to run the bot")
	}
	return nil
}
