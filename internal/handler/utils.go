package handler

import (
	"fmt"
	"html"
	"strings"

	"github.com/mymmrac/telego"
)

// parseCommand splits "/name@bot args" into its parts. ok is false for
// plain messages and true for anything command-shaped, including commands
// addressed to other bots (those come back with an empty name so the
// dispatcher consumes them silently).
func parseCommand(text string) (name, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	if head == "" {
		return "", "", false
	}

	if cmd, target, found := strings.Cut(head, "@"); found {
		if botUsername != "" && !strings.EqualFold(target, botUsername) {
			return "", "", true
		}
		head = cmd
	}

	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func displayName(u telego.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

func numberedRules(rules []string) string {
	var sb strings.Builder
	for i, rule := range rules {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, html.EscapeString(rule))
	}
	return sb.String()
}
