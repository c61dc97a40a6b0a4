// Package i18n holds the user-facing strings of the chat overlay.
package i18n

import "strings"

// Language selects a message table.
type Language int

const (
	En Language = iota
	Zh
)

// ParseLanguage maps tags like "zh-CN", "zh_CN" or "en-US" to a
// language. Anything that is not Chinese is English.
func ParseLanguage(tag string) Language {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(tag)), "zh") {
		return Zh
	}
	return En
}

func (l Language) String() string {
	if l == Zh {
		return "zh"
	}
	return "en"
}

// Key names one message.
type Key int

const (
	WelcomeMessage Key = iota // args: accept, cancel, toggle key names
	PromptUser
	PromptAssistant
	PromptCandidate
	ThinkingProcess
	HintToggleReasoning // args: toggle key name
	ReasoningStart
	ReasoningEnd
	ReasoningTruncated
	ErrorPrefix
	NoCandidate
)

var tables = map[Language]map[Key]string{
	En: {
		WelcomeMessage:      "[LLM chat] Type your question. %s accepts the command. %s exits. %s toggles reasoning.",
		PromptUser:          "you> ",
		PromptAssistant:     "assistant> ",
		PromptCandidate:     "candidate: ",
		ThinkingProcess:     "[Thinking] ",
		HintToggleReasoning: "(%s to expand/collapse reasoning)",
		ReasoningStart:      "--- Reasoning ---",
		ReasoningEnd:        "--- End ---",
		ReasoningTruncated:  "(truncated to fit terminal height)",
		ErrorPrefix:         "error> ",
		NoCandidate:         "(no command to accept)",
	},
	Zh: {
		WelcomeMessage:      "[LLM chat] 输入您的问题。%s 接受命令，%s 退出，%s 展开/折叠思维链。",
		PromptUser:          "你> ",
		PromptAssistant:     "助手> ",
		PromptCandidate:     "候选命令: ",
		ThinkingProcess:     "[思考中] ",
		HintToggleReasoning: "(%s 展开/折叠思维链)",
		ReasoningStart:      "--- 思维链 ---",
		ReasoningEnd:        "--- 结束 ---",
		ReasoningTruncated:  "（内容过长，已按终端高度截断）",
		ErrorPrefix:         "错误> ",
		NoCandidate:         "（没有可接受的命令）",
	},
}

// Catalog returns messages in one language.
type Catalog struct {
	Lang Language
}

// T returns the message for k, falling back to English.
func (c Catalog) T(k Key) string {
	if s, ok := tables[c.Lang][k]; ok {
		return s
	}
	return tables[En][k]
}
