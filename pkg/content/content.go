package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jwebster45206/d20"
	"gopkg.in/yaml.v3"
)

//go:embed data/dungeon_hunt.yaml
var defaultContent []byte

// Tables is the full set of static game content. It is read-only after Load
// and may be shared between sessions.
type Tables struct {
	StartLocation string   `json:"start_location"`
	DefaultClass  string   `json:"default_class"`
	StartingGold  int      `json:"starting_gold"`
	TradeGoods    []string `json:"trade_goods"`

	Locations Table[Location]       `json:"locations"`
	Enemies   Table[Enemy]          `json:"enemies"`
	Quests    Table[Quest]          `json:"quests"`
	ShopItems Table[ShopItem]       `json:"shop_items"`
	NPCs      Table[NPC]            `json:"npcs"`
	Events    Table[RandomEvent]    `json:"events"`
	Classes   Table[CharacterClass] `json:"classes"`
}

// document mirrors the YAML layout.
type document struct {
	StartLocation string           `yaml:"start_location"`
	DefaultClass  string           `yaml:"default_class"`
	StartingGold  int              `yaml:"starting_gold"`
	TradeGoods    []string         `yaml:"trade_goods"`
	Locations     []Location       `yaml:"locations"`
	Enemies       []Enemy          `yaml:"enemies"`
	Quests        []Quest          `yaml:"quests"`
	ShopItems     []ShopItem       `yaml:"shop_items"`
	NPCs          []NPC            `yaml:"npcs"`
	Events        []RandomEvent    `yaml:"events"`
	Classes       []CharacterClass `yaml:"classes"`
}

// Default loads the content embedded in the binary.
func Default() (*Tables, error) {
	return Load(defaultContent)
}

// MustDefault is Default for callers that cannot recover from bad embedded content.
func MustDefault() *Tables {
	t, err := Default()
	if err != nil {
		panic(fmt.Sprintf("content: embedded tables are invalid: %v", err))
	}
	return t
}

// LoadFile reads and validates a content file.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Load(data)
}

// Open loads the content file at path, or the embedded content when path is empty.
func Open(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Load decodes YAML content strictly and validates every cross reference.
func Load(data []byte) (*Tables, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	t := &Tables{
		StartLocation: doc.StartLocation,
		DefaultClass:  doc.DefaultClass,
		StartingGold:  doc.StartingGold,
		TradeGoods:    doc.TradeGoods,
	}

	var err error
	if t.Locations, err = newTable("locations", doc.Locations, func(l Location) string { return l.Key }); err != nil {
		return nil, err
	}
	if t.Enemies, err = newTable("enemies", doc.Enemies, func(e Enemy) string { return e.Key }); err != nil {
		return nil, err
	}
	if t.Quests, err = newTable("quests", doc.Quests, func(q Quest) string { return q.Key }); err != nil {
		return nil, err
	}
	if t.ShopItems, err = newTable("shop_items", doc.ShopItems, func(s ShopItem) string { return s.Key }); err != nil {
		return nil, err
	}
	if t.NPCs, err = newTable("npcs", doc.NPCs, func(n NPC) string { return n.Key }); err != nil {
		return nil, err
	}
	if t.Events, err = newTable("events", doc.Events, func(e RandomEvent) string { return e.Key }); err != nil {
		return nil, err
	}
	if t.Classes, err = newTable("classes", doc.Classes, func(c CharacterClass) string { return c.Key }); err != nil {
		return nil, err
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tables) validate() error {
	var errs []error

	if !t.Locations.Has(t.StartLocation) {
		errs = append(errs, fmt.Errorf("start_location %q is not a location", t.StartLocation))
	}
	if !t.Classes.Has(t.DefaultClass) {
		errs = append(errs, fmt.Errorf("default_class %q is not a class", t.DefaultClass))
	}
	if t.StartingGold < 0 {
		errs = append(errs, fmt.Errorf("starting_gold must not be negative"))
	}
	if len(t.TradeGoods) == 0 {
		errs = append(errs, fmt.Errorf("trade_goods is empty"))
	}

	for _, loc := range t.Locations.All() {
		for _, key := range loc.Enemies {
			if !t.Enemies.Has(key) {
				errs = append(errs, fmt.Errorf("location %q: unknown enemy %q", loc.Key, key))
			}
		}
	}

	for _, e := range t.Enemies.All() {
		if err := checkStatBlock(e.Key, e.HP, e.Defense, map[string]int{"attack": e.Attack}); err != nil {
			errs = append(errs, fmt.Errorf("enemy %q: %w", e.Key, err))
		}
		if e.Gold < 0 || e.Experience < 0 {
			errs = append(errs, fmt.Errorf("enemy %q: negative reward", e.Key))
		}
	}

	for _, c := range t.Classes.All() {
		attrs := map[string]int{"attack": c.Attack, "magic": c.Magic, "mp": c.MP}
		if err := checkStatBlock(c.Key, c.HP, c.Defense, attrs); err != nil {
			errs = append(errs, fmt.Errorf("class %q: %w", c.Key, err))
		}
		if c.MP < 0 {
			errs = append(errs, fmt.Errorf("class %q: negative mp", c.Key))
		}
	}

	for _, item := range t.ShopItems.All() {
		if item.Name == "" {
			errs = append(errs, fmt.Errorf("shop item %q: missing name", item.Key))
		}
		if item.Price < 0 {
			errs = append(errs, fmt.Errorf("shop item %q: negative price", item.Key))
		}
	}

	for _, n := range t.NPCs.All() {
		if len(n.Dialogue) == 0 {
			errs = append(errs, fmt.Errorf("npc %q: no dialogue", n.Key))
		}
	}

	for _, ev := range t.Events.All() {
		if len(ev.Outcomes) == 0 {
			errs = append(errs, fmt.Errorf("event %q: no outcomes", ev.Key))
		}
		for i, o := range ev.Outcomes {
			if err := t.checkOutcome(o); err != nil {
				errs = append(errs, fmt.Errorf("event %q outcome %d: %w", ev.Key, i, err))
			}
		}
	}

	return errors.Join(errs...)
}

func (t *Tables) checkOutcome(o Outcome) error {
	if !o.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", o.Kind)
	}
	switch o.Kind {
	case OutcomeGold, OutcomeExperience:
		if o.Amount <= 0 {
			return fmt.Errorf("%s outcome needs a positive amount", o.Kind)
		}
	case OutcomeQuest:
		if !t.Quests.Has(o.Value) {
			return fmt.Errorf("unknown quest %q", o.Value)
		}
	default:
		if strings.TrimSpace(o.Value) == "" {
			return fmt.Errorf("%s outcome needs a value", o.Kind)
		}
	}
	return nil
}

// checkStatBlock builds a d20 actor from a stat block. The builder rejects
// a non-positive hp; attributes are checked here since d20 accepts any value.
func checkStatBlock(id string, hp, defense int, attrs map[string]int) error {
	for name, v := range attrs {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if _, err := d20.NewActor(id).
		WithHP(hp).
		WithAC(defense).
		WithAttributes(attrs).
		Build(); err != nil {
		return fmt.Errorf("invalid stat block: %w", err)
	}
	return nil
}

// Location returns the location for key. ok is false for unknown keys.
func (t *Tables) Location(key string) (Location, bool) {
	return t.Locations.Get(key)
}

// EnemiesAt returns the enemies that may appear at a location, in table order.
// Unknown locations and locations without enemies yield an empty slice.
func (t *Tables) EnemiesAt(locationKey string) []Enemy {
	loc, ok := t.Locations.Get(locationKey)
	if !ok {
		return nil
	}
	out := make([]Enemy, 0, len(loc.Enemies))
	for _, key := range loc.Enemies {
		if e, ok := t.Enemies.Get(key); ok {
			out = append(out, e)
		}
	}
	return out
}

// ShopItemByName finds a shop item by its display name.
func (t *Tables) ShopItemByName(name string) (ShopItem, bool) {
	for _, item := range t.ShopItems.All() {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return ShopItem{}, false
}
