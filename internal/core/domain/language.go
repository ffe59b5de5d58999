package domain

type Language string

const (
	LanguageRussian Language = "ru"
	LanguageLatvian Language = "lv"
)

var SupportedLanguages = []Language{LanguageRussian, LanguageLatvian}

func (l Language) Valid() bool {
	for _, s := range SupportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}
