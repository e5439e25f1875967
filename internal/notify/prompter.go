package notify

import (
	"context"
	"fmt"
	"strings"
)

// Prompter shows the authorization prompt and returns the user's answer.
type Prompter interface {
	Prompt(ctx context.Context) (granted bool, err error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context) (bool, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(ctx context.Context) (bool, error) { return f(ctx) }

// PolicyPrompter answers every prompt with a fixed decision. A headless
// server uses it in place of an interactive dialog.
type PolicyPrompter struct {
	Grant bool
}

// Prompt returns the configured decision.
func (p PolicyPrompter) Prompt(context.Context) (bool, error) { return p.Grant, nil }

// ParsePolicy maps "grant"/"deny" (and common synonyms) to a PolicyPrompter.
func ParsePolicy(s string) (PolicyPrompter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grant", "allow", "yes", "true", "1":
		return PolicyPrompter{Grant: true}, nil
	case "deny", "no", "false", "0":
		return PolicyPrompter{Grant: false}, nil
	}
	return PolicyPrompter{}, fmt.Errorf("unknown authorization policy %q", s)
}
