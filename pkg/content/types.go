package content

// Location is a place the character can explore.
type Location struct {
	Key         string   `yaml:"key" json:"key"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Events      []string `yaml:"events" json:"events,omitempty"` // activity tags, e.g. "combat", "treasure"
	Shop        bool     `yaml:"shop" json:"shop"`
	Enemies     []string `yaml:"enemies" json:"enemies,omitempty"` // enemy keys, in table order
}

// Enemy is a static enemy template. Every fight ends with the enemy defeated.
type Enemy struct {
	Key        string   `yaml:"key" json:"key"`
	Name       string   `yaml:"name" json:"name"`
	HP         int      `yaml:"hp" json:"hp"`
	Attack     int      `yaml:"attack" json:"attack"`
	Defense    int      `yaml:"defense" json:"defense"`
	Gold       int      `yaml:"gold" json:"gold"`
	Experience int      `yaml:"experience" json:"experience"`
	Loot       []string `yaml:"loot" json:"loot,omitempty"`
}

// Reward is granted (in part) when a quest is accepted.
type Reward struct {
	Gold       int      `yaml:"gold" json:"gold"`
	Experience int      `yaml:"experience" json:"experience"`
	Items      []string `yaml:"items" json:"items,omitempty"`
}

// Quest describes a quest that can be accepted.
// Completed is carried for display only; nothing sets it.
type Quest struct {
	Key         string   `yaml:"key" json:"key"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Objectives  []string `yaml:"objectives" json:"objectives,omitempty"`
	Reward      Reward   `yaml:"reward" json:"reward"`
	Completed   bool     `yaml:"completed" json:"completed"`
}

// ShopItem is an item the shop can offer.
type ShopItem struct {
	Key         string `yaml:"key" json:"key"`
	Name        string `yaml:"name" json:"name"`
	Price       int    `yaml:"price" json:"price"`
	Effect      string `yaml:"effect" json:"effect"` // heal, mana, weapon, armor, magic, buff, spell
	Value       int    `yaml:"value" json:"value"`
	Description string `yaml:"description" json:"description"`
}

// NPC is a character the player can talk to.
type NPC struct {
	Key      string   `yaml:"key" json:"key"`
	Name     string   `yaml:"name" json:"name"`
	Greeting string   `yaml:"greeting" json:"greeting"`
	Dialogue []string `yaml:"dialogue" json:"dialogue"`
}

// OutcomeKind tags what a random event outcome does.
type OutcomeKind string

const (
	OutcomeGold       OutcomeKind = "gold"
	OutcomeExperience OutcomeKind = "experience"
	OutcomeItem       OutcomeKind = "item"
	OutcomeQuest      OutcomeKind = "quest"
	OutcomeBlessing   OutcomeKind = "blessing"
)

// Valid reports whether k is one of the known outcome kinds.
func (k OutcomeKind) Valid() bool {
	switch k {
	case OutcomeGold, OutcomeExperience, OutcomeItem, OutcomeQuest, OutcomeBlessing:
		return true
	}
	return false
}

// Outcome is one possible result of a random event.
// Gold and experience outcomes use Amount; the others use Value
// (an item name, a quest key or a blessing name).
type Outcome struct {
	Kind    OutcomeKind `yaml:"kind" json:"kind"`
	Amount  int         `yaml:"amount" json:"amount,omitempty"`
	Value   string      `yaml:"value" json:"value,omitempty"`
	Message string      `yaml:"message" json:"message"`
}

// RandomEvent is a random encounter with a set of outcomes.
type RandomEvent struct {
	Key         string    `yaml:"key" json:"key"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Outcomes    []Outcome `yaml:"outcomes" json:"outcomes"`
}

// CharacterClass holds the starting stats for a new character.
type CharacterClass struct {
	Key           string   `yaml:"key" json:"key"`
	Name          string   `yaml:"name" json:"name"`
	HP            int      `yaml:"hp" json:"hp"`
	MP            int      `yaml:"mp" json:"mp"`
	Attack        int      `yaml:"attack" json:"attack"`
	Defense       int      `yaml:"defense" json:"defense"`
	Magic         int      `yaml:"magic" json:"magic"`
	StartingItems []string `yaml:"starting_items" json:"starting_items,omitempty"`
}
