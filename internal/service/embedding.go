package service

import (
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the size of the vector stored on recipes
const EmbeddingDimensions = 3

// GenerateEmbedding returns a simple deterministic embedding for the given text.
// This implementation counts the total length, vowels and consonants.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range text {
		if strings.ContainsRune("aeiouаеёиоуыэюя", r) {
			vowels++
		} else if (r >= 'a' && r <= 'z') || (r >= 'а' && r <= 'я') || r == 'ё' {
			consonants++
		}
	}
	length := float32(len([]rune(text)))
	return pgvector.NewVector([]float32{length, vowels, consonants})
}

// recipeEmbedding builds the search vector of a recipe
func recipeEmbedding(name, text string) *pgvector.Vector {
	v := GenerateEmbedding(name + " " + text)
	return &v
}
