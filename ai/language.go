package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLanguage язык вне поддерживаемого набора
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language язык записи, указанный клиентом. Из аудио не определяется.
type Language string

const (
	LanguageTamil     Language = "Tamil"
	LanguageEnglish   Language = "English"
	LanguageHindi     Language = "Hindi"
	LanguageMalayalam Language = "Malayalam"
	LanguageTelugu    Language = "Telugu"
)

// SupportedLanguages закрытый набор языков в каноническом написании
var SupportedLanguages = []Language{
	LanguageTamil,
	LanguageEnglish,
	LanguageHindi,
	LanguageMalayalam,
	LanguageTelugu,
}

// ParseLanguage приводит имя языка к каноническому виду.
// Регистр и пробелы по краям не важны.
func ParseLanguage(s string) (Language, error) {
	name := strings.TrimSpace(s)
	for _, lang := range SupportedLanguages {
		if strings.EqualFold(name, string(lang)) {
			return lang, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
}

// Tonal true для языков с более широкой нормой вариативности высоты тона
func (l Language) Tonal() bool {
	switch l {
	case LanguageTamil, LanguageTelugu, LanguageMalayalam:
		return true
	}
	return false
}

func (l Language) String() string {
	return string(l)
}
