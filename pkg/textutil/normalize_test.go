package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"empty", "   ", ""},
		{"punctuation only", "?!", ""},
		{"drops stop words and short tokens", "What is the hostel?", "accommodation dormitory hostel housing residence"},
		{"synonym maps back to key", "Tuition", "fee tuition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.question))
		})
	}
}

func TestNormalizeIsOrderInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("fee structure CSE"), Normalize("CSE fee structure!"))
}

func TestSimilarity(t *testing.T) {
	a := Normalize("what is the fee structure")
	assert.InDelta(t, 1.0, Similarity(a, a), 1e-9)
	assert.Zero(t, Similarity("", a))

	b := Normalize("hostel rooms")
	assert.Less(t, Similarity(a, b), 0.5)
	assert.InDelta(t, Similarity(a, b), Similarity(b, a), 1e-9)
}

func TestHashIsStable(t *testing.T) {
	assert.Equal(t, Hash("abc"), Hash("abc"))
	assert.NotEqual(t, Hash("abc"), Hash("abd"))
	assert.Len(t, Hash("abc"), 64)
}
