// Package retrieval 剧集关键词检索：分词、匹配条件构造、引用格式化
package retrieval

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen 关键词最少字符数，更短的词被丢弃
const minTokenLen = 3

// StopWords 西班牙语功能词
var StopWords = newWordSet(
	"a", "al", "ante", "con", "contra", "de", "del", "desde", "en", "entre", "hacia", "hasta", "para", "por",
	"segun", "sin", "sobre", "tras", "durante", "mediante", "etc", "y", "o", "u", "e", "ni", "que", "si",
	"porque", "como", "cuando", "donde", "quien", "cual", "cuyo", "el", "la", "lo", "los", "las", "un", "una",
	"unos", "unas", "algun", "alguna", "algunos", "algunas", "mucho", "mucha", "muchos", "muchas", "poco",
	"poca", "pocos", "pocas", "todo", "toda", "todos", "todas", "otro", "otra", "otros", "otras", "mismo",
	"misma", "mismos", "mismas", "ese", "esa", "esos", "esas", "este", "esta", "estos", "estas", "aquel",
	"aquella", "aquellos", "aquellas", "su", "sus", "mi", "mis", "tu", "tus", "nuestro", "nuestra",
	"nuestros", "nuestras", "vuestro", "vuestra", "vuestros", "vuestras", "me", "te", "se", "nos", "os",
	"le", "les", "yo", "ella", "ello", "nosotros", "nosotras", "vosotros", "vosotras", "ellos", "ellas",
	"usted", "ustedes",
)

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	set := make(wordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Contains 是否包含该词
func (s wordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Tokenize 将自由文本查询切分为小写关键词
// 去掉非字母数字字符，过滤停用词和过短的词，结果可能为空
func Tokenize(query string) []string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(query))

	var tokens []string
	for _, word := range strings.Fields(clean) {
		if utf8.RuneCountInString(word) < minTokenLen || StopWords.Contains(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
