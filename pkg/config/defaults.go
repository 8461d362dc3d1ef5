package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultTopWords       = 20
	DefaultTopUsers       = 5
	DefaultUser           = "Overall"
	DefaultWebhookTimeout = 10 * time.Second
	MaxWebhookRetries     = 5
)

// Environment variable names.
const (
	EnvUser     = "CHATLENS_USER"
	EnvTopWords = "CHATLENS_TOP_WORDS"
)

// DefaultMediaPlaceholders are the bodies Android and iOS exports write in
// place of attachments. The iOS form starts with U+200E.
var DefaultMediaPlaceholders = []string{
	"<Media omitted>",
	"\u200eimage omitted",
}

// DefaultStopWords covers English plus the romanized Hindi and Bengali
// filler common in these chats, and the export's own placeholder tokens.
var DefaultStopWords = []string{
	"ha", "haa", "haan", "na", "naa", "nhi", "keno", "kyano", "kano", "bhai", "vai", "ei", "e", "ki",
	"re", "ami", "tui", "tumi", "amay", "amake", "toke", "kor", "korte", "hobe", "acha",
	"accha", "achha", "achchha", "khub", "aage", "aaj", "aj", "kal", "kaal", "kya", "kyu", "kyun",
	"tu", "tereko", "ko", "hi", "se", "to", "toh", "hoga", "the", "is", "hai", "of", "you", "hum",
	"main", "and", "bhi", "theke", "bol", "ja", "ta", "er", "o", "kore", "ar", "aar", "eta", "ota",
	"tai", "kichu", "ohh", "uff", "sob", "shob", "son", "shon", "kichhu", "abar", "ebar", "but", "te",
	"amar", "amr", "sathe", "shathe", "bole", "hbe", "tho", "tor", "nei", "ekta", "thik", "hoy",
	"hoye", "jani", "oi", "tr", "r", "or", "kono", "tao", "ache", "de", "ke", "message", "deleted",
	"bhalo", "this", "that", "niye", "noy", "was", "ekhon", "akhon", "gulo", "<omitted>", "edited>",
	"a", "image", "sticker", "for", "on", "your", "me", "my", "mine", "him", "her", "his", "in",
	"all", "with", "are", "we", "will", "from", "have", "it", "at", "as", "our", "not", "be", "so",
	"no", "please", "has", "had", "been", "yes", "if", "up", "can", "who", "by", "whose", "whom",
	"an", "i", "also", "any", "&", "pm", "am", "hello", "get", "us", "cannot", "vlo", "valo", "here",
	"there", "their", "them", "k", "omitted", "<sticker>", "<edited>", "j", "je", "keu", "mone",
	"kotha", "korbe", "dekh", "dakh", "hm", "hmm", "dekha", "<this", "diye", "akta", "jabe", "din",
	"jaabe", "eto", "naki", "debo", "haaaa", "?", "hoe", "jbe",
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MediaPlaceholders: append([]string(nil), DefaultMediaPlaceholders...),
		TopWords:          DefaultTopWords,
		TopUsers:          DefaultTopUsers,
		User:              DefaultUser,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if user := os.Getenv(EnvUser); user != "" {
		c.User = user
	}

	if v := os.Getenv(EnvTopWords); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TopWords = n
		}
	}
}
