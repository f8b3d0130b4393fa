// Package config reads parley's environment and builds the shared
// collaborators for the binaries.
package config

import (
	"fmt"
	"os"

	"github.com/vthunder/parley/internal/corpus"
	"github.com/vthunder/parley/internal/embedding"
	"github.com/vthunder/parley/internal/logging"
	"github.com/vthunder/parley/internal/profiling"
)

// Transport names
const (
	TransportTerminal = "terminal"
	TransportDiscord  = "discord"
)

// Config is everything read from the environment
type Config struct {
	Bot       string
	Corpus    string
	Transport string

	OllamaURL  string
	EmbedModel string
	Vectors    string

	DiscordToken   string
	DiscordChannel string
	DiscordOwner   string

	Profile    string
	ProfileLog string
	LogFile    string

	HTTPAddr string
}

// FromEnv reads the configuration, applying defaults
func FromEnv() Config {
	cfg := Config{
		Bot:            os.Getenv("PARLEY_BOT"),
		Corpus:         os.Getenv("PARLEY_CORPUS"),
		Transport:      os.Getenv("PARLEY_TRANSPORT"),
		OllamaURL:      os.Getenv("OLLAMA_URL"),
		EmbedModel:     os.Getenv("EMBED_MODEL"),
		Vectors:        os.Getenv("PARLEY_VECTORS"),
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordChannel: os.Getenv("DISCORD_CHANNEL_ID"),
		DiscordOwner:   os.Getenv("DISCORD_OWNER_ID"),
		Profile:        os.Getenv("PARLEY_PROFILE"),
		ProfileLog:     os.Getenv("PARLEY_PROFILE_LOG"),
		LogFile:        os.Getenv("PARLEY_LOG_FILE"),
		HTTPAddr:       os.Getenv("PARLEY_HTTP_ADDR"),
	}
	if cfg.Bot == "" {
		cfg.Bot = "alien"
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportTerminal
	}
	if cfg.ProfileLog == "" {
		cfg.ProfileLog = "parley-profile.jsonl"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	return cfg
}

// Validate checks the transport settings
func (c Config) Validate() error {
	switch c.Transport {
	case TransportTerminal:
	case TransportDiscord:
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_TOKEN environment variable required for discord transport")
		}
		if c.DiscordChannel == "" {
			return fmt.Errorf("DISCORD_CHANNEL_ID environment variable required for discord transport")
		}
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", c.Transport, TransportTerminal, TransportDiscord)
	}
	return nil
}

// OpenProfiler opens the turn profiler selected by PARLEY_PROFILE
func (c Config) OpenProfiler() (*profiling.Profiler, error) {
	level, err := profiling.ParseLevel(c.Profile)
	if err != nil {
		return nil, err
	}
	return profiling.Open(level, c.ProfileLog)
}

// LoadBot returns the corpus file when one is set, otherwise the
// built-in bot
func (c Config) LoadBot() (*corpus.Bot, error) {
	if c.Corpus != "" {
		return corpus.LoadFile(c.Corpus)
	}
	return corpus.Load(c.Bot)
}

// LoadBots returns every built-in bot keyed by name. The corpus file, when
// set, is added under its own name and replaces a built-in of that name.
func (c Config) LoadBots() (map[string]*corpus.Bot, error) {
	out := make(map[string]*corpus.Bot)
	for _, name := range corpus.Names() {
		bot, err := corpus.Load(name)
		if err != nil {
			return nil, err
		}
		out[name] = bot
	}
	if c.Corpus != "" {
		bot, err := corpus.LoadFile(c.Corpus)
		if err != nil {
			return nil, err
		}
		if _, ok := out[bot.Name]; ok {
			logging.Info("config", "Corpus %s replaces built-in bot %s", c.Corpus, bot.Name)
		}
		out[bot.Name] = bot
	}
	return out, nil
}

// LoadFor returns the corpus file when it uses strategy, otherwise the
// named built-in bot
func (c Config) LoadFor(strategy corpus.Strategy, builtin string) (*corpus.Bot, error) {
	if c.Corpus != "" {
		bot, err := corpus.LoadFile(c.Corpus)
		if err != nil {
			return nil, err
		}
		if bot.Strategy == strategy {
			return bot, nil
		}
	}
	return corpus.Load(builtin)
}

// OpenProvider returns the embedding provider wrapped in a cache. With
// PARLEY_VECTORS set the SQLite vector store is used and must be closed
// by the caller through the returned func.
func (c Config) OpenProvider() (embedding.Provider, func() error, error) {
	if c.Vectors != "" {
		store, err := embedding.OpenVectorStore(c.Vectors)
		if err != nil {
			return nil, nil, err
		}
		logging.Info("config", "Using word vectors from %s", c.Vectors)
		return embedding.NewCache(store), store.Close, nil
	}
	client := embedding.NewClient(c.OllamaURL, c.EmbedModel)
	logging.Info("config", "Using Ollama embeddings (%s)", client.Model())
	return embedding.NewCache(client), func() error { return nil }, nil
}
