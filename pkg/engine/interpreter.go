package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/dungeon-hunt/pkg/content"
	"github.com/jwebster45206/dungeon-hunt/pkg/dice"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/jwebster45206/dungeon-hunt/pkg/wallet"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Combat and economy rules.
const (
	PlayerDamageSpread = 5  // player damage adds rand[0,5)
	EnemyDamageSpread  = 3  // enemy damage adds rand[0,3)
	HPPerLevel         = 10 // max HP gained per level
	TradePriceBase     = 100
	TradePriceSpread   = 200 // trade price is rand[100,300)
)

// Interpreter maps a command string onto a game state transition.
// It holds no per-session state; one Interpreter can serve many sessions as
// long as its dice.Source is safe for the callers' concurrency.
type Interpreter struct {
	tables *content.Tables
	rng    dice.Source
}

// NewInterpreter creates an interpreter over the given content and random source.
func NewInterpreter(tables *content.Tables, rng dice.Source) *Interpreter {
	return &Interpreter{
		tables: tables,
		rng:    rng,
	}
}

// Tables returns the content the interpreter reads.
func (in *Interpreter) Tables() *content.Tables {
	return in.tables
}

// Apply runs one command. gs is never modified; the returned state is a copy
// with the command's transition applied. Rejected and unknown commands return
// an unchanged copy and a failure response.
func (in *Interpreter) Apply(gs *state.GameState, raw string) (*state.GameState, *Response) {
	next := gs.Clone()
	resp := &Response{Command: raw, Tone: ToneInfo}

	switch ParseCommand(raw) {
	case CmdHelp:
		in.help(resp)
	case CmdConnect:
		in.connect(next, resp)
	case CmdBalance:
		in.balance(next, resp)
	case CmdMint:
		in.mint(next, resp)
	case CmdTrade:
		in.trade(next, resp)
	case CmdCharacter:
		in.character(next, resp)
	case CmdInventory:
		in.inventory(next, resp)
	case CmdLocation:
		in.location(next, resp)
	case CmdExplore:
		in.explore(next, resp)
	case CmdFight:
		in.fight(next, resp)
	case CmdShop:
		in.shop(next, resp)
	case CmdQuest:
		in.quest(next, resp)
	case CmdLevelUp:
		in.levelUp(next, resp)
	case CmdEvent:
		in.event(next, resp)
	case CmdNPC:
		in.npc(resp)
	case CmdClear:
		resp.ClearHistory = true
	default:
		resp.Tone = ToneFailure
		resp.Title = "Unknown command: " + raw
		resp.add("Type 'help' to see available commands.")
	}

	next.Character.Normalize()
	return next, resp
}

// Welcome is the first entry of every session's history.
func Welcome() *Response {
	return &Response{
		Command: "welcome",
		Tone:    ToneSuccess,
		Title:   "Welcome to Dungeon Hunt - Web3 Edition!",
		Lines: []string{
			"A blockchain-powered Dungeons & Dragons adventure awaits!",
			"Type 'help' to see available commands, or 'connect' to link your wallet.",
		},
	}
}

func (in *Interpreter) help(resp *Response) {
	resp.Title = "Available Commands:"
	for _, e := range helpEntries {
		resp.add(fmt.Sprintf("%-10s %s", e.cmd, e.text))
	}
}

// requireWallet writes the rejection for wallet-gated commands.
func requireWallet(gs *state.GameState, resp *Response, why string) bool {
	if gs.Wallet.Connected {
		return true
	}
	resp.Tone = ToneFailure
	resp.Title = "Please connect your wallet first " + why + "."
	return false
}

func (in *Interpreter) connect(gs *state.GameState, resp *Response) {
	if !gs.Wallet.Connected {
		resp.Tone = ToneFailure
		resp.Title = "No wallet connected."
		resp.add("Use the wallet control to connect a wallet (Ctrl+W in the console).")
		return
	}
	resp.Title = "Wallet connected."
	resp.add("Address: " + wallet.Short(gs.Wallet.Address))
}

func (in *Interpreter) balance(gs *state.GameState, resp *Response) {
	if !requireWallet(gs, resp, "to check your balance") {
		return
	}
	resp.Title = "Wallet Balance:"
	resp.add(
		"Check the wallet panel for your balance.",
		"Address: "+wallet.Short(gs.Wallet.Address),
	)
}

func (in *Interpreter) mint(gs *state.GameState, resp *Response) {
	if !requireWallet(gs, resp, "to mint items") {
		return
	}
	resp.Title = "Minting NFT item..."
	resp.add(
		"This would interact with a smart contract to mint your character as an NFT.",
		"Wallet: "+wallet.Short(gs.Wallet.Address),
	)
}

// trade draws: trade good, then price.
func (in *Interpreter) trade(gs *state.GameState, resp *Response) {
	if !requireWallet(gs, resp, "to trade with other players") {
		return
	}
	item := dice.Pick(in.rng, in.tables.TradeGoods)
	price := dice.Between(in.rng, TradePriceBase, TradePriceSpread)

	resp.Title = "Trading with another player..."
	resp.add(
		fmt.Sprintf("Player offers: %s for %d gold", item, price),
		"This would use smart contracts for secure peer-to-peer trading!",
	)
	resp.Transactions = append(resp.Transactions, txsim.NewRequest(txsim.KindTrade, item, price))
}

func (in *Interpreter) character(gs *state.GameState, resp *Response) {
	c := gs.Character
	resp.Title = "Character Sheet:"
	resp.add(
		"Name:       "+c.Name,
		"Class:      "+c.Class,
		fmt.Sprintf("Level:      %d", c.Level),
		fmt.Sprintf("HP:         %d/%d", c.HP, c.MaxHP),
		fmt.Sprintf("MP:         %d/%d", c.MP, c.MaxMP),
		fmt.Sprintf("Attack:     %d", c.Attack),
		fmt.Sprintf("Defense:    %d", c.Defense),
		fmt.Sprintf("Magic:      %d", c.Magic),
		fmt.Sprintf("Gold:       %d", c.Gold),
		fmt.Sprintf("Experience: %d/%d", c.Experience, state.ExperienceForLevel(c.Level)),
	)
	if len(c.Quests) == 0 {
		resp.add("Quests:     none")
		return
	}
	names := make([]string, 0, len(c.Quests))
	for _, key := range c.Quests {
		if q, ok := in.tables.Quests.Get(key); ok {
			names = append(names, q.Name)
		} else {
			names = append(names, key)
		}
	}
	resp.add("Quests:     " + strings.Join(names, ", "))
}

func (in *Interpreter) inventory(gs *state.GameState, resp *Response) {
	resp.Title = "Inventory:"
	if len(gs.Character.Inventory) == 0 {
		resp.add("Your inventory is empty.")
		return
	}
	for _, item := range gs.Character.Inventory {
		if si, ok := in.tables.ShopItemByName(item); ok {
			resp.add(fmt.Sprintf("• %s (%s)", item, si.Description))
			continue
		}
		resp.add("• " + item)
	}
}

func (in *Interpreter) location(gs *state.GameState, resp *Response) {
	loc, ok := in.tables.Location(gs.Location)
	if !ok {
		resp.Title = "You are in an unknown location."
		return
	}
	resp.Title = loc.Name
	in.describeLocation(loc, resp)
}

func (in *Interpreter) describeLocation(loc content.Location, resp *Response) {
	resp.add(loc.Description)
	if len(loc.Events) > 0 {
		tags := make([]string, 0, len(loc.Events))
		for _, tag := range loc.Events {
			tags = append(tags, humanize(tag))
		}
		resp.add("Activities: " + strings.Join(tags, ", "))
	}
	if enemies := in.tables.EnemiesAt(loc.Key); len(enemies) > 0 {
		names := make([]string, 0, len(enemies))
		for _, e := range enemies {
			names = append(names, e.Name)
		}
		resp.add("Enemies: " + strings.Join(names, ", "))
	}
	if loc.Shop {
		resp.add("A shop is open here.")
	}
}

// explore draws: location.
func (in *Interpreter) explore(gs *state.GameState, resp *Response) {
	key := dice.Pick(in.rng, in.tables.Locations.Keys())
	loc, _ := in.tables.Location(key)
	gs.Location = key

	resp.Tone = ToneSuccess
	resp.Title = fmt.Sprintf("You venture into %s...", loc.Name)
	in.describeLocation(loc, resp)
}

// fight draws: enemy, player damage roll, enemy damage roll.
func (in *Interpreter) fight(gs *state.GameState, resp *Response) {
	enemies := in.tables.EnemiesAt(gs.Location)
	if len(enemies) == 0 {
		resp.Tone = ToneFailure
		resp.Title = "No enemies found here."
		if loc, ok := in.tables.Location(gs.Location); ok {
			resp.Title = fmt.Sprintf("No enemies found in %s.", loc.Name)
		}
		resp.add("Try 'explore' to find somewhere more dangerous.")
		return
	}

	c := &gs.Character
	enemy := dice.Pick(in.rng, enemies)
	dealt := max(1, c.Attack-enemy.Defense+in.rng.IntN(PlayerDamageSpread))
	taken := max(1, enemy.Attack-c.Defense+in.rng.IntN(EnemyDamageSpread))

	if gs.Wallet.Connected {
		resp.Transactions = append(resp.Transactions,
			txsim.NewRequest(txsim.KindBattleReward, strings.Join(enemy.Loot, ", "), enemy.Gold))
	}

	c.TakeDamage(taken)
	c.Gold += enemy.Gold
	c.Experience += enemy.Experience
	c.AddItems(enemy.Loot...)

	resp.Tone = ToneCombat
	resp.Title = fmt.Sprintf("Battle with %s!", enemy.Name)
	resp.add(
		fmt.Sprintf("You strike for %d damage and defeat the %s!", dealt, enemy.Name),
		fmt.Sprintf("You take %d damage. HP: %d/%d", taken, c.HP, c.MaxHP),
		fmt.Sprintf("+%d gold, +%d experience", enemy.Gold, enemy.Experience),
	)
	if len(enemy.Loot) > 0 {
		resp.add("Loot: " + strings.Join(enemy.Loot, ", "))
	}
	if c.HP == 0 {
		resp.add("You are gravely wounded. Find a way to heal before your next fight.")
	}
}

// shop draws: item.
func (in *Interpreter) shop(gs *state.GameState, resp *Response) {
	item := dice.Pick(in.rng, in.tables.ShopItems.All())
	c := &gs.Character

	if c.Gold < item.Price {
		resp.Tone = ToneFailure
		resp.Title = fmt.Sprintf("Not enough gold! You need %d gold to buy %s.", item.Price, item.Name)
		resp.add(fmt.Sprintf("Current gold: %d", c.Gold))
		return
	}

	c.Gold -= item.Price
	c.AddItems(item.Name)

	resp.Tone = ToneSuccess
	resp.Title = fmt.Sprintf("You purchase %s for %d gold!", item.Name, item.Price)
	resp.add(
		item.Description,
		fmt.Sprintf("Remaining gold: %d", c.Gold),
	)
}

// quest draws: quest. Only the reward's experience is credited; reward gold
// and items are shown and sent with the quest_reward transaction.
func (in *Interpreter) quest(gs *state.GameState, resp *Response) {
	key := dice.Pick(in.rng, in.tables.Quests.Keys())
	q, _ := in.tables.Quests.Get(key)
	c := &gs.Character

	isNew := c.AcceptQuest(key)
	c.Experience += q.Reward.Experience

	if gs.Wallet.Connected {
		resp.Transactions = append(resp.Transactions,
			txsim.NewRequest(txsim.KindQuestReward, strings.Join(q.Reward.Items, ", "), q.Reward.Gold))
	}

	resp.Tone = ToneReward
	resp.Title = "New Quest: " + q.Name
	if !isNew {
		resp.Title = "Quest renewed: " + q.Name
	}
	resp.add(q.Description)
	for _, obj := range q.Objectives {
		resp.add("- " + obj)
	}
	resp.add(fmt.Sprintf("Quest accepted! You gain %d experience.", q.Reward.Experience))
	reward := fmt.Sprintf("Complete the quest to earn %d gold", q.Reward.Gold)
	if len(q.Reward.Items) > 0 {
		reward += " and " + strings.Join(q.Reward.Items, ", ")
	}
	resp.add(reward + "!")
}

func (in *Interpreter) levelUp(gs *state.GameState, resp *Response) {
	c := &gs.Character
	required := state.ExperienceForLevel(c.Level)
	if c.Experience < required {
		resp.Tone = ToneFailure
		resp.Title = "Not enough experience to level up!"
		resp.add(fmt.Sprintf("You need %d experience (current: %d, %d to go)",
			required, c.Experience, required-c.Experience))
		return
	}

	c.Level++
	c.MaxHP += HPPerLevel
	c.HP = c.MaxHP
	c.Experience -= required

	resp.Tone = ToneSuccess
	resp.Title = fmt.Sprintf("Level Up! You are now level %d!", c.Level)
	resp.add(fmt.Sprintf("+%d Max HP, HP fully restored!", HPPerLevel))
}

// event draws: event, outcome.
func (in *Interpreter) event(gs *state.GameState, resp *Response) {
	ev := dice.Pick(in.rng, in.tables.Events.All())
	outcome := dice.Pick(in.rng, ev.Outcomes)
	c := &gs.Character

	switch outcome.Kind {
	case content.OutcomeGold:
		c.Gold += outcome.Amount
	case content.OutcomeExperience:
		c.Experience += outcome.Amount
	case content.OutcomeItem:
		c.AddItems(outcome.Value)
	}

	resp.Tone = ToneReward
	resp.Title = ev.Name
	resp.add(ev.Description, outcome.Message)
}

// npc draws: npc, dialogue line.
func (in *Interpreter) npc(resp *Response) {
	n := dice.Pick(in.rng, in.tables.NPCs.All())
	line := dice.Pick(in.rng, n.Dialogue)

	resp.Title = n.Name
	resp.add(
		fmt.Sprintf("%q", n.Greeting),
		fmt.Sprintf("%q", line),
	)
}

// humanize turns a snake_case tag into title case: "meet_npc" -> "Meet Npc".
func humanize(tag string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "_", " "))
}
