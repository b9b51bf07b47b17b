// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/spinwheel/types"
)

var verbAliases = map[string]string{
	// Spin
	"s":     "spin",
	"go":    "spin",
	"pull":  "spin",
	"roll":  "spin",
	"turn":  "spin",
	"twirl": "spin",

	// Weight
	"w":        "weight",
	"reweight": "weight",
	"weigh":    "weight",

	// Add / Remove
	"insert": "add",
	"rm":     "remove",
	"del":    "remove",
	"delete": "remove",
	"drop":   "remove",

	// Inspection
	"layout":  "odds",
	"chances": "odds",
	"p":       "odds",
	"list":    "segments",
	"ls":      "segments",
	"wheel":   "segments",
	"st":      "status",
	"bank":    "status",
	"money":   "status",

	// Rounds
	"restart": "new",

	// Misc
	"h": "help",
	"?": "help",
}

var prepositions = map[string]bool{
	"to": true, "for": true, "at": true,
	"with": true, "of": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)
	if len(words) == 0 {
		return types.Intent{}
	}

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// "spin the wheel" has no object worth keeping.
	if verb == "spin" && len(rest) > 0 && rest[0] == "wheel" {
		rest = rest[1:]
	}

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "set weight", "new round", "show odds" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "set", "change":
		if words[1] == "weight" {
			rest := words[2:]
			if len(rest) > 0 && rest[0] == "of" {
				rest = rest[1:]
			}
			return append([]string{"weight"}, rest...)
		}
	case "new", "next":
		if words[1] == "round" || words[1] == "game" {
			return append([]string{"new"}, words[2:]...)
		}
	case "show", "view":
		return words[1:]
	case "take":
		if words[1] == "out" {
			return append([]string{"remove"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
