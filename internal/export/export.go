// Package export 把角色的回答保存为 Markdown 与 HTML 文档
package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/user/garybot/internal/utils"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// Document 一次问答
type Document struct {
	Character string
	Question  string
	Answer    string
	CreatedAt time.Time
}

// Markdown 文档正文
func (d Document) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Respuesta de %s\n\n", d.Character)
	fmt.Fprintf(&b, "Fecha/Hora: %s\n\n", d.CreatedAt.Format("2006-01-02T15:04:05"))
	b.WriteString("## Pregunta\n\n")
	b.WriteString(strings.TrimSpace(d.Question))
	b.WriteString("\n\n## Respuesta\n\n")
	b.WriteString(strings.TrimSpace(d.Answer))
	b.WriteString("\n")
	return b.String()
}

// HTML 渲染为完整的 HTML 页面
func (d Document) HTML() (string, error) {
	var body bytes.Buffer
	if err := markdownEngine.Convert([]byte(d.Markdown()), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	title := html.EscapeString("Respuesta de " + d.Character)
	return fmt.Sprintf("<!DOCTYPE html>\n<html lang=\"es\">\n<head>\n<meta charset=\"utf-8\" />\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		title, body.String()), nil
}

// BaseName <角色>_respuesta_<YYYYMMDD_HHMMSS>
func (d Document) BaseName() string {
	return fmt.Sprintf("%s_respuesta_%s", utils.SanitizeFilename(d.Character), d.CreatedAt.Format("20060102_150405"))
}

// SaveAnswer 在 dir 下写入 .md 与 .html，返回两个文件路径
func SaveAnswer(dir, character, question, answer string, now time.Time) (string, string, error) {
	doc := Document{Character: character, Question: question, Answer: answer, CreatedAt: now}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create export dir %s: %w", dir, err)
	}

	mdPath := filepath.Join(dir, doc.BaseName()+".md")
	if err := os.WriteFile(mdPath, []byte(doc.Markdown()), 0o644); err != nil {
		return "", "", fmt.Errorf("write markdown: %w", err)
	}

	rendered, err := doc.HTML()
	if err != nil {
		return "", "", err
	}
	htmlPath := filepath.Join(dir, doc.BaseName()+".html")
	if err := os.WriteFile(htmlPath, []byte(rendered), 0o644); err != nil {
		return "", "", fmt.Errorf("write html: %w", err)
	}
	return mdPath, htmlPath, nil
}
