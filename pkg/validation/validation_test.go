package validation

import (
	"strings"
	"testing"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		valid     bool
		cleaned   string
		corrected bool
		message   string
	}{
		{"Trims surrounding whitespace", "  joão   ", true, "joão", false, ""},
		{"Strips digits and punctuation", "J3nn1f3r!!", true, "Jnnfr", true, `Corrigi para: "Jnnfr". Está correto?`},
		{"Collapses inner whitespace", "Ana   Maria", true, "Ana Maria", true, `Corrigi para: "Ana Maria". Está correto?`},
		{"Non-breaking space separates words", "Ana\u00a0Maria", true, "Ana Maria", true, `Corrigi para: "Ana Maria". Está correto?`},
		{"Trims byte order mark", "\ufeffAna", true, "Ana", false, ""},
		{"Keeps hyphen and apostrophe", "Mary-Jane O'Neil", true, "Mary-Jane O'Neil", false, ""},
		{"Keeps accented letters", "Zoë Ângela", true, "Zoë Ângela", false, ""},
		{"Too short", "a", false, "a", false, MsgNameTooShort},
		{"Only symbols", "123!!", false, "", false, MsgNameTooShort},
		{"Too long", strings.Repeat("x", 51), false, strings.Repeat("x", 51), false, MsgNameTooLong},
		{"Exactly fifty", strings.Repeat("x", 50), true, strings.Repeat("x", 50), false, ""},
		{"Counts characters not bytes", strings.Repeat("é", 30), true, strings.Repeat("é", 30), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Name(tt.input)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.cleaned, got.Cleaned)
			assert.Equal(t, tt.corrected, got.Corrected)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

func TestURLs(t *testing.T) {
	t.Run("Extracts links and drops prose", func(t *testing.T) {
		got := URLs("gostei desse https://a.com e https://b.com/x")
		assert.True(t, got.Valid)
		assert.Equal(t, "https://a.com\nhttps://b.com/x", got.Cleaned)
		assert.Empty(t, got.Message)
	})

	t.Run("Accepts plain http", func(t *testing.T) {
		got := URLs("http://old.site.com.br")
		assert.True(t, got.Valid)
		assert.Equal(t, "http://old.site.com.br", got.Cleaned)
	})

	t.Run("No links", func(t *testing.T) {
		got := URLs("nenhum link aqui")
		assert.False(t, got.Valid)
		assert.Equal(t, MsgNoLinks, got.Message)
	})

	t.Run("Non-breaking space ends a link", func(t *testing.T) {
		got := URLs("https://a.com\u00a0é o meu site")
		assert.True(t, got.Valid)
		assert.Equal(t, "https://a.com", got.Cleaned)
	})

	t.Run("Bare domains are not links", func(t *testing.T) {
		assert.False(t, URLs("www.exemplo.com").Valid)
	})
}

func TestLookup(t *testing.T) {
	fn, ok := Lookup(domain.ValidateName)
	require.True(t, ok)
	assert.True(t, fn("Ana").Valid)

	fn, ok = Lookup(domain.ValidateURLs)
	require.True(t, ok)
	assert.False(t, fn("Ana").Valid)

	_, ok = Lookup("cpf")
	assert.False(t, ok)

	assert.True(t, Known(domain.ValidateNone))
	assert.True(t, Known(domain.ValidateURLs))
	assert.False(t, Known("cpf"))
}

func TestValidatorsArePure(t *testing.T) {
	in := "  Jo@o  "
	assert.Equal(t, Name(in), Name(in))
	assert.Equal(t, URLs("x https://a.com"), URLs("x https://a.com"))
}
