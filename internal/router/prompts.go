package router

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// Generation parameters per route. Greetings get a small, non-deterministic
// budget; everything else is deterministic with room for a full answer.
const (
	greetingTemperature = 0.8
	greetingMaxTokens   = 120
	answerTemperature   = 0
	answerMaxTokens     = 700
)

const greetingTemplate = `You are a friendly assistant. Reply to the greeting below in a casual, short, friendly tone, in the same language as the greeting.

Greeting: `

const ungroundedTemplate = `You are a helpful assistant. Answer the question below directly and concisely, in the same language as the question. If you do not know the answer, say so honestly.

Question: `

const groundedTemplate = `You are a helpful assistant. Answer the question using only the context below, in the same language as the question. If the context does not cover the question, say what you can from it.

Context:
%s
Question: `

// greetingPrompt builds the casual template for a matched greeting.
func greetingPrompt(query string) models.PromptSpec {
	return models.PromptSpec{
		Prompt:      greetingTemplate + query,
		Temperature: greetingTemperature,
		MaxTokens:   greetingMaxTokens,
	}
}

// ungroundedPrompt builds the no-context template; any low-confidence retrieved
// context has already been discarded.
func ungroundedPrompt(query string) models.PromptSpec {
	return models.PromptSpec{
		Prompt:      ungroundedTemplate + query,
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	}
}

// groundedPrompt builds the use-this-context template. Chunks arrive in
// descending score order and become one bulleted line each.
func groundedPrompt(query string, results []models.RetrievalResult) models.PromptSpec {
	var context strings.Builder
	for _, r := range results {
		context.WriteString("- ")
		context.WriteString(r.Chunk.Text)
		context.WriteString("\n")
	}
	prompt := fmt.Sprintf(groundedTemplate, context.String()) + query
	return models.PromptSpec{
		Prompt:      prompt,
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	}
}
