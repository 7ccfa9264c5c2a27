package config

// DefaultGreetings are the phrase prefixes that route to the casual template.
// The corpus the engine was built for is bilingual, so both Portuguese and
// English salutations are recognized out of the box.
var DefaultGreetings = []string{
	"oi", "olá", "ola", "opa", "e aí", "eai",
	"bom dia", "boa tarde", "boa noite",
	"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.KnowledgeDir == "" {
		cfg.Storage.KnowledgeDir = "./knowledge"
	}
	if cfg.Storage.ImagesDir == "" {
		cfg.Storage.ImagesDir = "./data/images"
	}
	if cfg.Storage.TextIndexPath == "" {
		cfg.Storage.TextIndexPath = "./data/text_index.json"
	}
	if cfg.Storage.ImageIndexPath == "" {
		cfg.Storage.ImageIndexPath = "./data/image_index.json"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.SimThreshold == 0 {
		cfg.Retrieval.SimThreshold = 0.75
	}
	if cfg.Retrieval.Greetings == nil {
		cfg.Retrieval.Greetings = append([]string(nil), DefaultGreetings...)
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.VisionModel == "" {
		cfg.OpenAI.VisionModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.FallbackCaption == "" {
		cfg.OpenAI.FallbackCaption = "Image received (caption unavailable)"
	}
	if cfg.OpenAI.UnavailableReply == "" {
		cfg.OpenAI.UnavailableReply = "Sorry, I can't generate an answer right now. Please try again later."
	}
	if cfg.OpenAI.CacheSize == 0 {
		cfg.OpenAI.CacheSize = 10000
	}
}
