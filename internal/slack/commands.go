package slack

import (
	"fmt"
	"strings"
)

type CommandType string

const (
	// /qotd subcommands
	CmdStatus CommandType = "status"
	CmdPost   CommandType = "post"
	CmdHelp   CommandType = "help"

	// /levels subcommands
	CmdXP    CommandType = "xp"
	CmdTop   CommandType = "top"
	CmdAddXP CommandType = "add"
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

// ParseQOTD parses the text of a /qotd slash command. Empty text means help.
func ParseQOTD(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdHelp}, nil
	}

	cmd := &Command{Raw: text, Args: parts[1:]}

	switch parts[0] {
	case "status":
		cmd.Type = CmdStatus
	case "post":
		cmd.Type = CmdPost
	case "help":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

// ParseLevels parses the text of a /levels slash command. Empty text means xp.
func ParseLevels(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdXP}, nil
	}

	cmd := &Command{Raw: text, Args: parts[1:]}

	switch parts[0] {
	case "xp":
		cmd.Type = CmdXP
	case "top", "leaderboard":
		cmd.Type = CmdTop
	case "add":
		cmd.Type = CmdAddXP
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

// ParseUserMention extracts the user ID from a Slack mention like
// <@U123456789> or <@U123456789|name>.
func ParseUserMention(mention string) (string, error) {
	if !strings.HasPrefix(mention, "<@") || !strings.HasSuffix(mention, ">") {
		return "", fmt.Errorf("not a user mention: %s", mention)
	}

	id := strings.TrimSuffix(strings.TrimPrefix(mention, "<@"), ">")
	if idx := strings.Index(id, "|"); idx >= 0 {
		id = id[:idx]
	}
	if id == "" {
		return "", fmt.Errorf("not a user mention: %s", mention)
	}

	return id, nil
}
