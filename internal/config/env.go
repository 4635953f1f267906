package config

import (
	"flag"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// apiKeyFallbacks are read, in order, when neither --api-key nor
// GCDTUTOR_API_KEY is set. They match the variables the Gemini SDK knows.
var apiKeyFallbacks = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// isFlagSet reports whether name was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	return isFlagSetAny(fs, name)
}

// isFlagSetAny reports whether any of names was given on the command line;
// aliases such as --quiet and -q count as one setting.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if slices.Contains(names, f.Name) {
			found = true
		}
	})
	return found
}

// envOverride binds GCDTUTOR_<envKey> to the flags that shadow it.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

var envOverrides = []envOverride{
	{"A", []string{"a"}, func(c *AppConfig, v string) { c.A = v }},
	{"B", []string{"b"}, func(c *AppConfig, v string) { c.B = v }},
	{"RETRIES", []string{"retries"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Retries = parsed
		}
	}},
	{"RETRY_DELAY", []string{"retry-delay"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.RetryDelay = parsed
		}
	}},
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},
	{"MODE", []string{"mode", "repl", "tui", "serve"}, func(c *AppConfig, v string) {
		c.Mode = Mode(strings.ToLower(v))
	}},
	{"LANG", []string{"lang"}, func(c *AppConfig, v string) { c.Lang = strings.ToLower(v) }},
	{"MODEL", []string{"model"}, func(c *AppConfig, v string) { c.Model = v }},
	{"SPEECH_MODEL", []string{"speech-model"}, func(c *AppConfig, v string) { c.SpeechModel = v }},
	{"VOICE", []string{"voice"}, func(c *AppConfig, v string) { c.Voice = v }},
	{"API_KEY", []string{"api-key"}, func(c *AppConfig, v string) { c.APIKey = v }},
	{"LISTEN", []string{"listen"}, func(c *AppConfig, v string) { c.Listen = v }},
	{"ALLOWED_ORIGINS", []string{"allowed-origins"}, func(c *AppConfig, v string) {
		c.AllowedOrigins = splitList(v)
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) { c.LogLevel = strings.ToLower(v) }},
	{"EXPLAIN", []string{"no-explain"}, func(c *AppConfig, v string) {
		c.Explain = parseBoolEnv(v, c.Explain)
	}},
	{"SPEAK", []string{"speak"}, func(c *AppConfig, v string) {
		c.Speak = parseBoolEnv(v, c.Speak)
	}},
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) {
		c.Quiet = parseBoolEnv(v, c.Quiet)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		c.NoColor = parseBoolEnv(v, c.NoColor)
	}},
}

// parseBoolEnv understands true/false, 1/0, yes/no and on/off; anything
// else keeps fallback.
func parseBoolEnv(val string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

// applyEnvOverrides copies GCDTUTOR_* variables into config unless the
// matching flag was given. Precedence is flags, then environment, then the
// config file, then defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}

// applyAPIKeyFallback reads the SDK's own variables when the key was given
// neither on the command line nor through GCDTUTOR_API_KEY.
func applyAPIKeyFallback(config *AppConfig, fs *flag.FlagSet) {
	if isFlagSet(fs, "api-key") || os.Getenv(EnvPrefix+"API_KEY") != "" {
		return
	}
	for _, key := range apiKeyFallbacks {
		if val := os.Getenv(key); val != "" {
			config.APIKey = val
			return
		}
	}
}
