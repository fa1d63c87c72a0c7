package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/garybot/internal/character"
	"github.com/user/garybot/internal/retrieval"
)

// AnswerOffline 不调用模型，按模板以角色口吻回答并引用相关剧集
func (s *ChatService) AnswerOffline(ctx context.Context, sheet *character.Sheet, question string) (string, error) {
	hits, err := s.searcher.Search(ctx, question, 2)
	if err != nil {
		return "", err
	}

	traits := "—"
	if len(sheet.PersonalityTraits) > 0 {
		traits = strings.Join(sheet.PersonalityTraits, ", ")
	}
	var catchphrase string
	if len(sheet.Catchphrases) > 0 {
		catchphrase = sheet.Catchphrases[0]
	}

	lines := make([]string, 0, 6+len(hits))
	if catchphrase != "" {
		lines = append(lines, catchphrase)
	}
	lines = append(lines,
		fmt.Sprintf("Me preguntas: “%s”.", question),
		fmt.Sprintf("Yo soy %s, suelo ser %s.", sheet.Name, traits),
	)
	if len(hits) > 0 {
		lines = append(lines, "Recuerdo algunos episodios relacionados:")
		for i := range hits {
			lines = append(lines, "- "+retrieval.FormatCitation(&hits[i]))
		}
	} else {
		lines = append(lines, "No recuerdo un episodio específico sobre eso...")
	}

	if catchphrase == "" || strings.EqualFold(catchphrase, "miau") {
		lines = append(lines, "¡Miau!")
	} else {
		lines = append(lines, catchphrase)
	}
	return strings.Join(lines, "\n"), nil
}
