package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/dungeon-hunt/pkg/content"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <content.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &ContentValidator{out: os.Stdout}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Content file is valid!")
}

var snakeCase = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

type ContentValidator struct {
	out      io.Writer
	warnings []string
}

func (v *ContentValidator) validateFile(filename string) error {
	fmt.Fprintf(v.out, "Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("content file must have .yaml or .yml extension: %s", baseName)
	}
	if name := strings.TrimSuffix(baseName, ext); !snakeCase.MatchString(name) {
		return fmt.Errorf("content filename '%s' must be lowercase snake_case (e.g., my_world.yaml)", baseName)
	}

	tables, err := content.LoadFile(filename)
	if err != nil {
		return err
	}

	v.warnings = nil
	v.checkReachability(tables)
	v.checkKeys(tables)

	fmt.Fprintf(v.out, "  %d locations, %d enemies, %d quests, %d shop items, %d npcs, %d events, %d classes\n",
		tables.Locations.Len(), tables.Enemies.Len(), tables.Quests.Len(),
		tables.ShopItems.Len(), tables.NPCs.Len(), tables.Events.Len(), tables.Classes.Len())
	for _, w := range v.warnings {
		fmt.Fprintf(v.out, "  warning: %s\n", w)
	}
	return nil
}

// checkReachability warns about content no command can ever reach.
func (v *ContentValidator) checkReachability(t *content.Tables) {
	placed := make(map[string]bool)
	for _, loc := range t.Locations.All() {
		for _, key := range loc.Enemies {
			placed[key] = true
		}
	}
	for _, key := range t.Enemies.Keys() {
		if !placed[key] {
			v.warnings = append(v.warnings, fmt.Sprintf("enemy %q is not placed in any location", key))
		}
	}

	cheapest := -1
	for _, item := range t.ShopItems.All() {
		if cheapest < 0 || item.Price < cheapest {
			cheapest = item.Price
		}
	}
	if cheapest > t.StartingGold {
		v.warnings = append(v.warnings, fmt.Sprintf("starting_gold %d cannot buy the cheapest shop item (%d)", t.StartingGold, cheapest))
	}
}

// checkKeys warns about keys that are not snake_case.
func (v *ContentValidator) checkKeys(t *content.Tables) {
	tables := map[string][]string{
		"location":  t.Locations.Keys(),
		"enemy":     t.Enemies.Keys(),
		"quest":     t.Quests.Keys(),
		"shop item": t.ShopItems.Keys(),
		"npc":       t.NPCs.Keys(),
		"event":     t.Events.Keys(),
		"class":     t.Classes.Keys(),
	}
	for _, kind := range []string{"location", "enemy", "quest", "shop item", "npc", "event", "class"} {
		for _, key := range tables[kind] {
			if !snakeCase.MatchString(key) {
				v.warnings = append(v.warnings, fmt.Sprintf("%s key %q should be lowercase snake_case", kind, key))
			}
		}
	}
}
