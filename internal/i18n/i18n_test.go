package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	for _, tag := range []string{"zh-CN", "zh_CN", "zh", "ZH-CN", " zh-TW "} {
		assert.Equal(t, Zh, ParseLanguage(tag), tag)
	}
	for _, tag := range []string{"en-US", "en", "EN", "unknown", ""} {
		assert.Equal(t, En, ParseLanguage(tag), tag)
	}
}

func TestTablesComplete(t *testing.T) {
	for lang, table := range tables {
		for k := WelcomeMessage; k <= NoCandidate; k++ {
			assert.NotEmpty(t, table[k], "%s missing key %d", lang, k)
		}
	}
}

func TestCatalog(t *testing.T) {
	assert.Equal(t, "you> ", Catalog{Lang: En}.T(PromptUser))
	assert.Equal(t, "你> ", Catalog{Lang: Zh}.T(PromptUser))
	assert.Equal(t, "[思考中] ", Catalog{Lang: Zh}.T(ThinkingProcess))
}
