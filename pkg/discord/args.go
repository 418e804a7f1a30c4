package discord

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ArgType is the kind of value a command argument is coerced to.
type ArgType int

const (
	// ArgString is a single word.
	ArgString ArgType = iota
	// ArgInt is a base-10 integer.
	ArgInt
	// ArgUser is a user mention or a raw user id.
	ArgUser
	// ArgText swallows the rest of the line. It must be the last argument.
	ArgText
)

func (t ArgType) String() string {
	switch t {
	case ArgInt:
		return "nombre"
	case ArgUser:
		return "@membre"
	case ArgText:
		return "texte"
	default:
		return "mot"
	}
}

// Arg declares one positional argument of a command.
type Arg struct {
	Name     string
	Type     ArgType
	Required bool
	// Default is used when an optional argument is absent. It must match Type:
	// string for ArgString/ArgUser/ArgText, int for ArgInt.
	Default any
}

// ArgError reports input that does not fit a command's argument schema.
type ArgError struct {
	Arg    Arg
	Value  string
	Reason string
}

func (e *ArgError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("argument %q: %s", e.Arg.Name, e.Reason)
	}
	return fmt.Sprintf("argument %q (%q): %s", e.Arg.Name, e.Value, e.Reason)
}

var mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)

// ParseUserID accepts "<@123>", "<@!123>" or "123" and returns "123".
func ParseUserID(s string) (string, bool) {
	if m := mentionRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if s != "" && strings.Trim(s, "0123456789") == "" {
		return s, true
	}
	return "", false
}

// parseArgs coerces the tokens following a command name against schema.
func parseArgs(schema []Arg, tokens []string) (map[string]any, error) {
	values := make(map[string]any, len(schema))

	for i, arg := range schema {
		if i >= len(tokens) {
			if arg.Required {
				return nil, &ArgError{Arg: arg, Reason: "manquant"}
			}
			if arg.Default != nil {
				values[arg.Name] = arg.Default
			}
			continue
		}

		tok := tokens[i]
		switch arg.Type {
		case ArgString:
			values[arg.Name] = tok
		case ArgInt:
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, &ArgError{Arg: arg, Value: tok, Reason: "doit être un nombre entier"}
			}
			values[arg.Name] = n
		case ArgUser:
			id, ok := ParseUserID(tok)
			if !ok {
				return nil, &ArgError{Arg: arg, Value: tok, Reason: "doit mentionner un membre"}
			}
			values[arg.Name] = id
		case ArgText:
			values[arg.Name] = strings.Join(tokens[i:], " ")
			return values, nil
		}
	}

	return values, nil
}
