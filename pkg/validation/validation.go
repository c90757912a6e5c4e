package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phdev/briefing/pkg/domain"
)

// Result is the outcome of a validator.
//
// Valid results carry the canonical Cleaned value. Corrected is set when the
// cleaned value differs from what the visitor typed; the caller must surface
// Message and ask for confirmation before storing it.
type Result struct {
	Valid     bool
	Cleaned   string
	Corrected bool
	Message   string
}

// Func is a pure validator.
type Func func(raw string) Result

const (
	nameMinLen = 2
	nameMaxLen = 50
)

const (
	MsgNameTooShort = "Por favor, digite um nome com pelo menos 2 caracteres."
	MsgNameTooLong  = "Nome muito longo. Por favor, use uma versão mais curta."
	MsgNoLinks      = "Não encontrei links válidos. Certifique-se de incluir http:// ou https://"
)

var (
	// Latin letters including the Latin-1 accented range, whitespace, hyphen and apostrophe.
	// RE2's \s is ASCII only; \p{Zs} and U+FEFF cover the rest of what browsers treat as blank.
	nameDisallowed = regexp.MustCompile(`[^a-zA-ZÀ-ÿ\s\p{Zs}\x{FEFF}\-']`)
	whitespaceRun  = regexp.MustCompile(`[\s\p{Zs}\x{FEFF}]+`)
	urlPattern     = regexp.MustCompile(`https?://[^\s\p{Zs}\x{FEFF}]+`)
)

func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func trimBlank(s string) string {
	return strings.TrimFunc(s, isBlank)
}

// CleanName strips disallowed characters, trims and collapses whitespace.
func CleanName(raw string) string {
	cleaned := nameDisallowed.ReplaceAllString(raw, "")
	cleaned = trimBlank(cleaned)
	return whitespaceRun.ReplaceAllString(cleaned, " ")
}

// Name validates a visitor name. Length is counted in characters, not bytes.
func Name(raw string) Result {
	cleaned := CleanName(raw)
	n := utf8.RuneCountInString(cleaned)

	if n < nameMinLen {
		return Result{Cleaned: cleaned, Message: MsgNameTooShort}
	}
	if n > nameMaxLen {
		return Result{Cleaned: cleaned, Message: MsgNameTooLong}
	}
	if cleaned != trimBlank(raw) {
		return Result{
			Valid:     true,
			Cleaned:   cleaned,
			Corrected: true,
			Message:   fmt.Sprintf("Corrigi para: \"%s\". Está correto?", cleaned),
		}
	}
	return Result{Valid: true, Cleaned: cleaned}
}

// URLs extracts every http(s) link from free text. Non-link text is dropped.
func URLs(raw string) Result {
	links := urlPattern.FindAllString(raw, -1)
	if len(links) == 0 {
		return Result{Cleaned: raw, Message: MsgNoLinks}
	}
	return Result{Valid: true, Cleaned: strings.Join(links, "\n")}
}

var registry = map[domain.ValidationTag]Func{
	domain.ValidateName: Name,
	domain.ValidateURLs: URLs,
}

// Lookup returns the validator registered for tag.
func Lookup(tag domain.ValidationTag) (Func, bool) {
	fn, ok := registry[tag]
	return fn, ok
}

// Known reports whether tag names a registered validator. The empty tag is known.
func Known(tag domain.ValidationTag) bool {
	if tag == domain.ValidateNone {
		return true
	}
	_, ok := registry[tag]
	return ok
}
