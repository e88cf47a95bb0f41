package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"pictionary/internal/gamedata"
	"pictionary/internal/prompts"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "PICTIONARY"

// legacyEnv maps flags to the unprefixed variable names older deployments set.
var legacyEnv = map[string]string{
	"port":                "PORT",
	"database-url":        "DATABASE_URL",
	"image-service-url":   "AI_SERVER_URL",
	"scoring-service-url": "AI_SCORING_URL",
}

type Config struct {
	Bind              string
	Port              int
	DatabaseURL       string
	ImageServiceURL   string
	ScoringServiceURL string
	ScoringTimeout    time.Duration
	AllowedOrigins    []string
	PublicURL         string
	PromptsFile       string
	RoundDuration     time.Duration
	PostRoundDelay    time.Duration
	TotalRounds       int
	MaxPlayers        int
	PointsPerGuess    int
	GuessRate         float64
	GuessBurst        int
	ReservationTTL    time.Duration
	Verbose           bool
}

// Register defines every flag on fs, writing into cfg.
func Register(fs *pflag.FlagSet, cfg *Config) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: PICTIONARY_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: PICTIONARY_PORT, PORT)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres DSN for game history, disabled when empty (env: PICTIONARY_DATABASE_URL, DATABASE_URL)")
	fs.StringVar(&cfg.ImageServiceURL, "image-service-url", "ws://localhost:8000/ws/generate", "websocket URL of the image generation service (env: PICTIONARY_IMAGE_SERVICE_URL, AI_SERVER_URL)")
	fs.StringVar(&cfg.ScoringServiceURL, "scoring-service-url", "http://localhost:8000/score/similarity", "URL of the similarity scoring service (env: PICTIONARY_SCORING_SERVICE_URL, AI_SCORING_URL)")
	fs.DurationVar(&cfg.ScoringTimeout, "scoring-timeout", 10*time.Second, "timeout for a single scoring request (env: PICTIONARY_SCORING_TIMEOUT)")
	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", []string{"http://localhost:5173", "http://127.0.0.1:5173", "https://pictionary-ai.pages.dev"}, "origins allowed to call the API and open game sockets (env: PICTIONARY_ALLOWED_ORIGINS)")
	fs.StringVar(&cfg.PublicURL, "public-url", "http://localhost:5173", "frontend URL encoded into join QR codes (env: PICTIONARY_PUBLIC_URL)")
	fs.StringVar(&cfg.PromptsFile, "prompts-file", "", "newline-separated prompt list replacing the built-in one (env: PICTIONARY_PROMPTS_FILE)")
	fs.DurationVar(&cfg.RoundDuration, "round-duration", 30*time.Second, "length of a round (env: PICTIONARY_ROUND_DURATION)")
	fs.DurationVar(&cfg.PostRoundDelay, "post-round-delay", 10*time.Second, "pause between rounds (env: PICTIONARY_POST_ROUND_DELAY)")
	fs.IntVar(&cfg.TotalRounds, "total-rounds", 10, "rounds per game (env: PICTIONARY_TOTAL_ROUNDS)")
	fs.IntVar(&cfg.MaxPlayers, "max-players", 12, "players allowed per room (env: PICTIONARY_MAX_PLAYERS)")
	fs.IntVar(&cfg.PointsPerGuess, "points-per-guess", 1000, "points for a perfect guess (env: PICTIONARY_POINTS_PER_GUESS)")
	fs.Float64Var(&cfg.GuessRate, "guess-rate", 2, "sustained messages per second accepted from one player (env: PICTIONARY_GUESS_RATE)")
	fs.IntVar(&cfg.GuessBurst, "guess-burst", 5, "message burst accepted from one player (env: PICTIONARY_GUESS_BURST)")
	fs.DurationVar(&cfg.ReservationTTL, "reservation-ttl", 10*time.Minute, "how long an unused room code stays reserved (env: PICTIONARY_RESERVATION_TTL)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: PICTIONARY_VERBOSE)")
}

// Default returns the flag defaults.
func Default() Config {
	var cfg Config
	Register(pflag.NewFlagSet("defaults", pflag.ContinueOnError), &cfg)
	return cfg
}

// ApplyEnv fills every flag not set on the command line from the environment.
func ApplyEnv(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		envs := []string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))}
		if legacy, ok := legacyEnv[f.Name]; ok {
			envs = append(envs, legacy)
		}
		_ = v.BindEnv(append([]string{f.Name}, envs...)...)
		if !f.Changed && v.IsSet(f.Name) {
			if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Errorf("reading %s from environment: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	switch {
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	case c.ImageServiceURL == "":
		return errors.New("--image-service-url must not be empty")
	case c.ScoringServiceURL == "":
		return errors.New("--scoring-service-url must not be empty")
	case c.ScoringTimeout <= 0:
		return errors.New("--scoring-timeout must be positive")
	case c.RoundDuration <= 0:
		return errors.New("--round-duration must be positive")
	case c.PostRoundDelay < 0:
		return errors.New("--post-round-delay must not be negative")
	case c.TotalRounds < 1:
		return fmt.Errorf("--total-rounds must be at least 1: %d", c.TotalRounds)
	case c.MaxPlayers < 1:
		return fmt.Errorf("--max-players must be at least 1: %d", c.MaxPlayers)
	case c.PointsPerGuess < 1:
		return fmt.Errorf("--points-per-guess must be at least 1: %d", c.PointsPerGuess)
	case c.GuessRate <= 0 || c.GuessBurst < 1:
		return errors.New("--guess-rate and --guess-burst must be positive")
	case c.ReservationTTL <= 0:
		return errors.New("--reservation-ttl must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// Prompts loads the prompt file if one is configured, else the built-in pool.
func (c *Config) Prompts() (*prompts.Pool, error) {
	if c.PromptsFile == "" {
		return prompts.Default(), nil
	}
	return prompts.Load(c.PromptsFile)
}

// Game returns the rule set handed to the room directory.
func (c *Config) Game(pool *prompts.Pool) gamedata.Config {
	return gamedata.Config{
		Prompts:        pool,
		RoundDuration:  c.RoundDuration,
		PostRoundDelay: c.PostRoundDelay,
		TotalRounds:    c.TotalRounds,
		MaxPlayers:     c.MaxPlayers,
		PointsPerGuess: c.PointsPerGuess,
	}
}
