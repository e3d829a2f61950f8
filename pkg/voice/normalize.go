package voice

import "strings"

// Normalize приводит сырой транскрипт распознавания речи к каноничному
// текстовому токену. Основной сценарий - голосовой ввод email, где
// пользователь произносит "dot" и "at" вместо символов.
//
// Замены срабатывают только на слове, окруженном пробелами (" dot "),
// а не на подстроке: "dashboard" остается нетронутым.
func Normalize(raw string) string {
	text := strings.TrimSpace(raw)

	// Движки распознавания часто добавляют точку в конце фразы
	text = strings.TrimSuffix(text, ".")

	text = strings.ToLower(text)

	text = strings.ReplaceAll(text, " dot ", ".")
	text = strings.ReplaceAll(text, " at ", "@")
	text = strings.ReplaceAll(text, " underscore ", "_")
	text = strings.ReplaceAll(text, " dash ", "-")
	text = strings.ReplaceAll(text, " hyphen ", "-")

	// Если получился структурный токен (email и т.п.) - убираем все пробелы
	if strings.ContainsAny(text, "@.") {
		text = strings.Join(strings.Fields(text), "")
	}

	// Повторная зачистка точки: после склейки пробелов "dot" в конце
	// фразы мог снова оказаться завершающей точкой
	text = strings.TrimSuffix(text, ".")

	return text
}
