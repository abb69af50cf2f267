package interpreter

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Action is the intent recognized in a chat line.
type Action int

const (
	ActionNone Action = iota
	ActionDeploy
	ActionScale
	ActionDelete
	ActionList
)

// String returns the lowercase action name.
func (a Action) String() string {
	switch a {
	case ActionDeploy:
		return "deploy"
	case ActionScale:
		return "scale"
	case ActionDelete:
		return "delete"
	case ActionList:
		return "list"
	default:
		return "none"
	}
}

// RequiresTarget reports whether the action operates on a named template.
func (a Action) RequiresTarget() bool {
	return a == ActionDeploy || a == ActionScale || a == ActionDelete
}

// intentRule maps a keyword set to an action. Rules are evaluated in
// table order and the first rule with a matching token wins.
type intentRule struct {
	action   Action
	keywords []string
}

var intentTable = []intentRule{
	{action: ActionDeploy, keywords: []string{"deploy", "create", "launch"}},
	{action: ActionScale, keywords: []string{"scale", "resize"}},
	{action: ActionDelete, keywords: []string{"delete", "remove", "destroy"}},
	{action: ActionList, keywords: []string{"list", "show"}},
}

// Command is the parsed form of one chat line. Target is empty and Value
// is zero when not resolved.
type Command struct {
	Action Action
	Target string
	Value  int32
}

// HasTarget reports whether a template name was resolved.
func (c Command) HasTarget() bool {
	return c.Target != ""
}

// HasValue reports whether a replica count was resolved.
func (c Command) HasValue() bool {
	return c.Value > 0
}

// Interpreter turns chat text into commands against a template catalog.
type Interpreter struct {
	catalog *Catalog
}

// New returns an interpreter bound to catalog. A nil catalog selects
// DefaultCatalog.
func New(catalog *Catalog) *Interpreter {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Interpreter{catalog: catalog}
}

// Catalog returns the catalog used for target resolution.
func (i *Interpreter) Catalog() *Catalog {
	return i.catalog
}

// Interpret parses text. It has no side effects.
//
// Matching rules:
//   - input is lowercased and split into tokens of letters, digits, '-' and '_'
//   - the action comes from the first intent rule with a keyword among the tokens
//   - the target is the last token that names a catalog template
//   - for scale, the value is the first run of ASCII digits in the raw text;
//     zero or a count that overflows int32 leaves it unset
func (i *Interpreter) Interpret(text string) Command {
	tokens := tokenize(strings.ToLower(text))

	cmd := Command{Action: matchAction(tokens)}
	if cmd.Action == ActionNone {
		return cmd
	}

	for _, tok := range tokens {
		if _, ok := i.catalog.Lookup(tok); ok {
			cmd.Target = tok
		}
	}

	if cmd.Action == ActionScale {
		cmd.Value = firstNumber(text)
	}

	return cmd
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
	})
}

func matchAction(tokens []string) Action {
	for _, rule := range intentTable {
		for _, kw := range rule.keywords {
			if slices.Contains(tokens, kw) {
				return rule.action
			}
		}
	}
	return ActionNone
}

// firstNumber parses the first run of ASCII digits in s.
func firstNumber(s string) int32 {
	start := strings.IndexFunc(s, isASCIIDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && isASCIIDigit(rune(s[end])) {
		end++
	}

	n, err := strconv.ParseInt(s[start:end], 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
