package engine

import "strings"

// CommandType is a recognised terminal command.
type CommandType string

const (
	CmdHelp      CommandType = "help"
	CmdConnect   CommandType = "connect"
	CmdBalance   CommandType = "balance"
	CmdMint      CommandType = "mint"
	CmdTrade     CommandType = "trade"
	CmdCharacter CommandType = "character"
	CmdInventory CommandType = "inventory"
	CmdLocation  CommandType = "location"
	CmdExplore   CommandType = "explore"
	CmdFight     CommandType = "fight"
	CmdShop      CommandType = "shop"
	CmdQuest     CommandType = "quest"
	CmdLevelUp   CommandType = "levelup"
	CmdEvent     CommandType = "event"
	CmdNPC       CommandType = "npc"
	CmdClear     CommandType = "clear"
	CmdNone      CommandType = "" // unrecognised input
)

var knownCommands = map[string]CommandType{
	"help":      CmdHelp,
	"connect":   CmdConnect,
	"balance":   CmdBalance,
	"mint":      CmdMint,
	"trade":     CmdTrade,
	"character": CmdCharacter,
	"inventory": CmdInventory,
	"location":  CmdLocation,
	"explore":   CmdExplore,
	"fight":     CmdFight,
	"shop":      CmdShop,
	"quest":     CmdQuest,
	"levelup":   CmdLevelUp,
	"event":     CmdEvent,
	"npc":       CmdNPC,
	"clear":     CmdClear,
}

// helpEntries is the order commands are listed in by help.
var helpEntries = []struct {
	cmd  CommandType
	text string
}{
	{CmdConnect, "Show wallet connection status"},
	{CmdCharacter, "View character stats"},
	{CmdInventory, "Check your inventory"},
	{CmdLocation, "Describe where you are"},
	{CmdExplore, "Travel to a random location"},
	{CmdFight, "Engage in combat"},
	{CmdShop, "Visit the shop"},
	{CmdQuest, "Start a new quest"},
	{CmdLevelUp, "Level up your character"},
	{CmdEvent, "Trigger a random event"},
	{CmdNPC, "Talk to a stranger"},
	{CmdMint, "Mint NFT items"},
	{CmdBalance, "Check wallet balance"},
	{CmdTrade, "Trade with other players"},
	{CmdClear, "Clear terminal"},
	{CmdHelp, "Show this help"},
}

// ParseCommand normalises input (trim + lower-case) and looks it up.
// Unknown input returns CmdNone.
func ParseCommand(input string) CommandType {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return CmdNone
	}
	return knownCommands[normalized]
}
