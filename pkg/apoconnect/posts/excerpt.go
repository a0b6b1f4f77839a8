package posts

import "strings"

// ExcerptLength is the number of characters kept before the ellipsis
const ExcerptLength = 150

var markupChars = strings.NewReplacer(
	"#", "", "*", "", "_", "", "~", "", "`", "", ">", "", "[", "", "]", "",
)

// Excerpt strips markdown punctuation from content and shortens it to
// ExcerptLength characters, appending "..." when it had to cut.
func Excerpt(content string) string {
	plain := strings.TrimSpace(markupChars.Replace(content))
	runes := []rune(plain)
	if len(runes) <= ExcerptLength {
		return plain
	}
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "..."
}
