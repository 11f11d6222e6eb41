package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config.yaml"

type Config struct {
	Log      Log      `yaml:"log"`
	Server   Server   `yaml:"server"`
	OpenAI   OpenAI   `yaml:"openai"`
	Chroma   Chroma   `yaml:"chroma"`
	Dialogue Dialogue `yaml:"dialogue"`
	Storage  Storage  `yaml:"storage"`
	Yandex   Yandex   `yaml:"yandex"`
	MCP      MCP      `yaml:"mcp"`
}

type Server struct {
	// HTTP listen address
	Listen string `yaml:"listen" example:":8001" validate:"required"`
	// Comma separated list of allowed CORS origins
	AllowedOrigins string `yaml:"allowed_origins" example:"*"`
}

type OpenAI struct {
	Classifier ModelConfig `yaml:"classifier" validate:"required"`
	Reply      ModelConfig `yaml:"reply" validate:"required"`
	Embedding  ModelConfig `yaml:"embedding" validate:"required"`
	// Whisper compatible speech recognition, preferred over SpeechKit when set
	Transcription Transcription `yaml:"transcription"`
}

type Transcription struct {
	// OpenAI compatible base url, api.openai.com when empty
	BaseURL string `yaml:"base_url" example:"https://api.groq.com/openai/v1" validate:"omitempty,url"`
	// API token
	Token string `yaml:"token" example:"gsk_abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// Model name, transcription through this endpoint is disabled when empty
	Model string `yaml:"model" example:"whisper-large-v3"`
	// ISO-639-1 language of the uploaded audio
	Language string `yaml:"language" example:"ar" validate:"required"`
}

type ModelConfig struct {
	// OpenAI compatible base url
	BaseURL string `yaml:"base_url" example:"https://api.groq.com/openai/v1" validate:"required,url"`
	// API token
	Token string `yaml:"token" example:"gsk_abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"meta-llama/llama-4-maverick-17b-128e-instruct" validate:"required"`
}

type Chroma struct {
	// Chroma server url
	URL string `yaml:"url" example:"http://localhost:8000" validate:"required,url"`
	// Collection holding the recipes
	Collection string `yaml:"collection" example:"recipestest" validate:"required"`
}

type Dialogue struct {
	// Number of user/assistant exchanges kept in rolling memory
	MemoryWindow int `yaml:"memory_window" example:"12" validate:"min=1,max=100"`
	// Number of most recent memory entries given to the classifier, 0 disables context
	ClassifierContext *int `yaml:"classifier_context" example:"10" validate:"omitempty,min=0,max=200"`
	// Maximum number of candidate recipes offered per query
	MaxCandidates int `yaml:"max_candidates" example:"5" validate:"min=1,max=20"`
	// Literal message that restarts the conversation
	ResetCommand string `yaml:"reset_command" example:"/new" validate:"required"`
}

type Storage struct {
	// Directory for profile and chat log files
	DataDir string `yaml:"data_dir" example:"data" validate:"required"`
}

type Yandex struct {
	SpeechKit SpeechKit `yaml:"speech_kit"`
}

type SpeechKit struct {
	// Path to the service account key, speech recognition is disabled when empty
	KeyFile string `yaml:"key_file" example:"service-account-key.json"`
	// Recognition language whitelist, empty means automatic detection.
	// SpeechKit has no Arabic model, use openai.transcription for Arabic audio
	Languages []string `yaml:"languages" example:"[\"ru-RU\"]"`
}

type MCP struct {
	// MCP streamable HTTP listen address, the MCP server is disabled when empty
	Listen string `yaml:"listen" example:":8002"`
}

type Log struct {
	// Minimum log level: debug, info, warn or error
	Level string `yaml:"level" example:"info" validate:"omitempty,oneof=debug info warn error"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	path := os.Getenv("RECIPECHAT_CONFIG")
	if path == "" {
		path = defaultPath
	}

	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	result.setDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8001"
	}
	if c.Server.AllowedOrigins == "" {
		c.Server.AllowedOrigins = "*"
	}
	if c.Chroma.URL == "" {
		c.Chroma.URL = "http://localhost:8000"
	}
	if c.Chroma.Collection == "" {
		c.Chroma.Collection = "recipestest"
	}
	if c.OpenAI.Transcription.Language == "" {
		c.OpenAI.Transcription.Language = "ar"
	}
	if c.Dialogue.MemoryWindow == 0 {
		c.Dialogue.MemoryWindow = 12
	}
	if c.Dialogue.ClassifierContext == nil {
		classifierContext := 10
		c.Dialogue.ClassifierContext = &classifierContext
	}
	if c.Dialogue.MaxCandidates == 0 {
		c.Dialogue.MaxCandidates = 5
	}
	if c.Dialogue.ResetCommand == "" {
		c.Dialogue.ResetCommand = "/new"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
}
