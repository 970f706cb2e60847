package domain

// CommandDef describes a slash command available to the user.
type CommandDef struct {
	Name        string
	Description string
	Group       string // display group for /help
	Args        bool   // expects arguments after the name
}

// CommandDefs is the single source of truth for all slash commands.
var CommandDefs = []CommandDef{
	// Blocks
	{Name: "/expand", Description: "expand every collapsed paste", Group: "blocks"},
	{Name: "/collapse", Description: "fold every expanded paste back", Group: "blocks"},
	{Name: "/blocks", Description: "list pasted blocks", Group: "blocks"},
	// History
	{Name: "/history", Description: "list or pick recent submissions", Group: "history", Args: true},
	// Config
	{Name: "/config", Description: "show/set preferences", Group: "config", Args: true},
	// General
	{Name: "/help", Description: "show this help", Group: "general"},
	{Name: "/clear", Description: "clear the input", Group: "general"},
	{Name: "/exit", Description: "quit promptpad", Group: "general"},
	{Name: "/quit", Description: "quit promptpad", Group: "general"},
}

// LookupCommand returns the definition for name.
func LookupCommand(name string) (CommandDef, bool) {
	for _, c := range CommandDefs {
		if c.Name == name {
			return c, true
		}
	}
	return CommandDef{}, false
}

// CommandGroups defines the display order and labels for help groups.
var CommandGroups = []struct {
	Key   string
	Label string
}{
	{"blocks", "Pasted blocks"},
	{"history", "History"},
	{"config", "Config"},
	{"general", "General"},
}
