package state

import (
	"slices"

	"github.com/jwebster45206/dungeon-hunt/pkg/content"
)

// Character is the player's character sheet.
type Character struct {
	Name       string   `json:"name"`
	Class      string   `json:"class"`
	Level      int      `json:"level"`
	HP         int      `json:"hp"`
	MaxHP      int      `json:"max_hp"`
	MP         int      `json:"mp"`
	MaxMP      int      `json:"max_mp"`
	Attack     int      `json:"attack"`
	Defense    int      `json:"defense"`
	Magic      int      `json:"magic"`
	Gold       int      `json:"gold"`
	Experience int      `json:"experience"`
	Inventory  []string `json:"inventory"`
	Quests     []string `json:"quests"` // accepted quest keys, no duplicates
}

// DefaultCharacterName is used when a character is created without a name.
const DefaultCharacterName = "Adventurer"

// NewCharacter builds a level 1 character from a class template.
func NewCharacter(name string, class content.CharacterClass, startingGold int) Character {
	if name == "" {
		name = DefaultCharacterName
	}
	return Character{
		Name:       name,
		Class:      class.Name,
		Level:      1,
		HP:         class.HP,
		MaxHP:      class.HP,
		MP:         class.MP,
		MaxMP:      class.MP,
		Attack:     class.Attack,
		Defense:    class.Defense,
		Magic:      class.Magic,
		Gold:       startingGold,
		Experience: 0,
		Inventory:  slices.Clone(class.StartingItems),
		Quests:     []string{},
	}
}

// Clone returns a deep copy.
func (c Character) Clone() Character {
	out := c
	out.Inventory = slices.Clone(c.Inventory)
	out.Quests = slices.Clone(c.Quests)
	return out
}

// HasQuest reports whether the quest key has been accepted.
func (c *Character) HasQuest(key string) bool {
	return slices.Contains(c.Quests, key)
}

// AcceptQuest records a quest key. Accepting a quest twice keeps one entry.
func (c *Character) AcceptQuest(key string) bool {
	if c.HasQuest(key) {
		return false
	}
	c.Quests = append(c.Quests, key)
	return true
}

// AddItems appends items to the inventory in order.
func (c *Character) AddItems(items ...string) {
	c.Inventory = append(c.Inventory, items...)
}

// TakeDamage reduces HP. HP cannot go below 0.
func (c *Character) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	c.HP -= n
	if c.HP < 0 {
		c.HP = 0
	}
}

// Normalize clamps HP and MP into [0, max] and gold to be non-negative.
func (c *Character) Normalize() {
	c.HP = clamp(c.HP, 0, c.MaxHP)
	c.MP = clamp(c.MP, 0, c.MaxMP)
	if c.Gold < 0 {
		c.Gold = 0
	}
}

// ExperienceForLevel returns the experience required to advance from level.
func ExperienceForLevel(level int) int {
	return level * 100
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return max(lo, min(v, hi))
}
