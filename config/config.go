package config

import "os"

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func Port() string {
	return getEnv("PORT", "8080")
}

// FrontendURL is the only origin allowed to call the API cross-origin.
func FrontendURL() string {
	return getEnv("FRONTEND_URL", "http://localhost:5174")
}

func OllamaBaseURL() string {
	return getEnv("OLLAMA_BASE_URL", "http://127.0.0.1:11434")
}

func OllamaModel() string {
	return getEnv("OLLAMA_MODEL", "mistral")
}

// SummaryBackend selects the summarizer implementation: "ollama" (default)
// or "openai".
func SummaryBackend() string {
	return getEnv("SUMMARY_BACKEND", "ollama")
}

func OpenAIModel() string {
	return getEnv("OPENAI_MODEL", "gpt-3.5-turbo-1106")
}

// SentimentModelPath points at a local ONNX sentiment model. When empty the
// service classifies with VADER instead.
func SentimentModelPath() string {
	return os.Getenv("SENTIMENT_MODEL_PATH")
}

func RedditClientID() string {
	return os.Getenv("REDDIT_CLIENT_ID")
}

func RedditClientSecret() string {
	return os.Getenv("REDDIT_CLIENT_SECRET")
}
