package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_SizeLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		inputSize int
		wantErr   bool
	}{
		{"Under default", 0, DefaultMaxInputSize - 1, false},
		{"Exact default", 0, DefaultMaxInputSize, false},
		{"Over default", 0, DefaultMaxInputSize + 1, true},
		{"Custom limit", 10, 10, false},
		{"Over custom limit", 10, 11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := Sanitize(input, tt.limit)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitize_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Olá mundo", "Olá mundo"},
		{"Safe Controls", "Linha1\nLinha2\tTab", "Linha1\nLinha2\tTab"},
		{"Windows line breaks", "Cores:\r\nazul\r\nbranco", "Cores:\nazul\nbranco"},
		{"Lone carriage return", "azul\rbranco", "azul\nbranco"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxInputSize, Limit(0, 0))
	assert.Equal(t, 2048, Limit(2048, 0))
	assert.Equal(t, 256, Limit(2048, 256), "a tighter step limit wins")
	assert.Equal(t, 2048, Limit(2048, 9000), "a step cannot raise the global ceiling")
}

func TestSanitize_InvalidUTF8(t *testing.T) {
	_, err := Sanitize("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98", 0)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
