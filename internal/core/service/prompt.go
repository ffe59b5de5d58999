package service

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

// Instruction is the rendered extraction request for the completion service.
type Instruction struct {
	Language domain.Language
	Text     string
}

var latvianTemplate = `Pārveido sekojošo komandu latviešu valodā strukturētā JSON norādītajā formātā. Izmanto **tikai** informāciju no komandas. Nepievieno nekādu papildu informāciju vai izdomātus elementus.

Komanda: "{{.Command}}"

Prasības:

1. Sadali komandu atsevišķās darbībās, ja tādas ir vairākas. Katrai darbībai jābūt atsevišķam objektam.
2. Katrai darbībai atgriez objektu šādā formātā:

{
  "manufacturer": "<ražotājs angļu valodā>",
  "part": "<detaļa latviešu valodā>",
  "model": "<modelis vai virsbūve latviešu valodā>",
  "quantity": <daudzums, vesels skaitlis>,
  "action": "<add vai remove>"
}

3. Izmanto latviešu valodu laukiem "part" un "model". Lauks "manufacturer" ir ražotāja oficiālais nosaukums angļu valodā.
4. **Neizdomā datus**, kas nav norādīti komandā.
5. Ja darbība nav skaidri norādīta komandā, izmanto "action": "add".
6. Ņem vērā, ka komandā var būt minētas populāras automašīnu markas un automobiļu detaļas.
7. Atbildei jābūt stingri JSON formātā, bez papildu teksta vai komentāriem.

Atbildes piemērs:

{
  "changes": [
    {
      "manufacturer": "Toyota",
      "part": "bremžu disks",
      "model": "Corolla",
      "quantity": 1,
      "action": "add"
    }
  ]
}
`

var russianTemplate = `Преобразуйте следующую команду на русском языке в структурированный JSON в указанном формате. Используйте **только** информацию из команды. Не добавляйте никаких дополнительных данных или вымышленных элементов.

Команда: "{{.Command}}"

Требования:

1. Разбейте команду на отдельные действия, если их несколько. Каждое действие должно быть отдельным объектом.
2. Для каждого действия верните объект в следующем формате:

{
  "manufacturer": "<производитель на английском языке>",
  "part": "<деталь на русском языке>",
  "model": "<модель или кузов на русском языке>",
  "quantity": <количество, целое число>,
  "action": "<add или remove>"
}

3. Поля "part" и "model" заполняйте на русском языке. Поле "manufacturer" содержит официальное название производителя на английском языке.
4. **Не придумывайте данные**, отсутствующие в команде.
5. Если действие не указано явно, установите "action": "add".
6. Учтите, что в команде могут упоминаться популярные автомобильные марки и автозапчасти.
7. Ответ должен быть строго в формате JSON, без дополнительного текста или комментариев.

Пример ответа:

{
  "changes": [
    {
      "manufacturer": "Toyota",
      "part": "тормозной диск",
      "model": "Corolla",
      "quantity": 1,
      "action": "add"
    }
  ]
}
`

// DefaultTemplates holds one extraction template per supported language.
var DefaultTemplates = map[domain.Language]string{
	domain.LanguageLatvian: latvianTemplate,
	domain.LanguageRussian: russianTemplate,
}

type PromptBuilder struct {
	templates map[domain.Language]*template.Template
}

func NewPromptBuilder(templates map[domain.Language]string) (*PromptBuilder, error) {
	b := &PromptBuilder{templates: make(map[domain.Language]*template.Template, len(templates))}
	for lang, text := range templates {
		tpl, err := template.New(string(lang)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", lang, err)
		}
		b.templates[lang] = tpl
	}
	return b, nil
}

// Build renders the extraction instruction for the command in the given language.
func (b *PromptBuilder) Build(command string, language domain.Language) (Instruction, error) {
	tpl, ok := b.templates[language]
	if !ok || !language.Valid() {
		return Instruction{}, fmt.Errorf("%w: %q", ErrInvalidLanguage, language)
	}

	var sb strings.Builder
	if err := tpl.Execute(&sb, struct{ Command string }{Command: command}); err != nil {
		return Instruction{}, fmt.Errorf("render %s template: %w", language, err)
	}
	return Instruction{Language: language, Text: sb.String()}, nil
}
