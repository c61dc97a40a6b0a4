package config

import (
	"sort"
	"strings"
)

// DefaultPromptTemplate is the system prompt used when none is configured.
const DefaultPromptTemplate = "You are a focused shell copilot on {os} ({arch}) running {shell}.\n" +
	"Please answer in {lang}.\n" +
	"Always respond with a markdown code block containing a JSON object:\n" +
	"```json\n" +
	`{"command": "<shell command>", "answer": "brief human-readable note"}` + "\n" +
	"```\n" +
	"Prefer safe defaults; if unsure ask via answer."

// RenderPrompt replaces {name} placeholders with vars. Unknown
// placeholders are left as they are.
func RenderPrompt(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	pairs := make([]string, 0, 2*len(names))
	for _, k := range names {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
