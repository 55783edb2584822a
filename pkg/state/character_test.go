package state

import "testing"

func TestCharacter_TakeDamage(t *testing.T) {
	tests := []struct {
		name     string
		hp       int
		damage   int
		expected int
	}{
		{"normal hit", 20, 5, 15},
		{"overkill floors at zero", 4, 10, 0},
		{"zero damage", 10, 0, 10},
		{"negative damage ignored", 10, -3, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Character{HP: tt.hp, MaxHP: 20}
			c.TakeDamage(tt.damage)
			if c.HP != tt.expected {
				t.Errorf("Expected HP %d, got %d", tt.expected, c.HP)
			}
		})
	}
}

func TestCharacter_Normalize(t *testing.T) {
	c := Character{HP: 40, MaxHP: 30, MP: -2, MaxMP: 10, Gold: -5}
	c.Normalize()
	if c.HP != 30 || c.MP != 0 || c.Gold != 0 {
		t.Errorf("Unexpected normalized values: hp=%d mp=%d gold=%d", c.HP, c.MP, c.Gold)
	}
}

func TestCharacter_AcceptQuest(t *testing.T) {
	c := Character{}
	if !c.AcceptQuest("goblin_hunt") {
		t.Fatal("Expected first accept to record the quest")
	}
	if c.AcceptQuest("goblin_hunt") {
		t.Error("Expected second accept to be a no-op")
	}
	if len(c.Quests) != 1 || !c.HasQuest("goblin_hunt") {
		t.Errorf("Expected one accepted quest, got %v", c.Quests)
	}
}

func TestExperienceForLevel(t *testing.T) {
	for level, expected := range map[int]int{1: 100, 2: 200, 7: 700} {
		if got := ExperienceForLevel(level); got != expected {
			t.Errorf("ExperienceForLevel(%d) = %d, want %d", level, got, expected)
		}
	}
}
