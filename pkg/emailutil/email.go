package emailutil

import (
	"regexp"
	"strings"
)

// Публичные почтовые сервисы - для рекрутеров требуется корпоративный домен
var PersonalDomains = []string{
	"gmail.com",
	"yahoo.com",
	"outlook.com",
	"hotmail.com",
	"icloud.com",
	"me.com",
	"msn.com",
	"live.com",
	"aol.com",
	"zoho.com",
	"protonmail.com",
	"proton.me",
	"yandex.com",
	"mail.com",
	"gmx.com",
	"rediffmail.com",
	"rocketmail.com",
	"tutanota.com",
	"fastmail.com",
	"hushmail.com",
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var nonLetterRe = regexp.MustCompile(`[^a-zA-Z._-]`)

var separatorRe = regexp.MustCompile(`[._-]`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsPersonalEmail(email string) bool {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(parts[1])
	for _, d := range PersonalDomains {
		if d == domain {
			return true
		}
	}
	return false
}

// NameFromEmail извлекает отображаемое имя из адреса:
// "john.doe42@acme.com" -> "John Doe"
func NameFromEmail(email string) string {
	prefix := strings.SplitN(email, "@", 2)[0]
	lettersOnly := nonLetterRe.ReplaceAllString(prefix, "")

	parts := separatorRe.Split(lettersOnly, -1)
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		words = append(words, strings.ToUpper(part[:1])+strings.ToLower(part[1:]))
	}

	return strings.Join(words, " ")
}
