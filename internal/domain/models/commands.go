package models

import "strings"

// CommandType enumerates the stock queries the owner can send over WhatsApp.
type CommandType string

const (
	CommandStock   CommandType = "stock"
	CommandSizes   CommandType = "sizes"
	CommandSearch  CommandType = "search"
	CommandProfit  CommandType = "profit"
	CommandNet     CommandType = "net"
	CommandSummary CommandType = "summary"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

var commandTypes = []CommandType{CommandStock, CommandSizes, CommandSearch, CommandProfit, CommandNet, CommandSummary, CommandHelp}

// Command represents a parsed query extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. The leading slash is optional.
// Arguments keep their case since product IDs and sizes are case-sensitive.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	for _, t := range commandTypes {
		if head == string(t) {
			cmd.Type = t
			break
		}
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
