package entities

// CompanionClass is the closed set of companion class archetypes
type CompanionClass string

const (
	ClassWarrior CompanionClass = "warrior"
	ClassMage    CompanionClass = "mage"
	ClassRogue   CompanionClass = "rogue"
	ClassCleric  CompanionClass = "cleric"
)

// Personality is the closed set of companion personality traits
type Personality string

const (
	PersonalityBrave      Personality = "brave"
	PersonalityCautious   Personality = "cautious"
	PersonalityWitty      Personality = "witty"
	PersonalityWise       Personality = "wise"
	PersonalityAggressive Personality = "aggressive"
	PersonalityProtective Personality = "protective"
)

// Companion is an autonomous, non-human party member
type Companion struct {
	Name        string         `json:"name"`
	Class       CompanionClass `json:"class"`
	Personality Personality    `json:"personality"`
	VoiceID     string         `json:"voice_id"`

	Level int `json:"level"`
	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`
	AC    int `json:"ac"`

	VoiceDescription string   `json:"voice_description"`
	Traits           []string `json:"traits"`
	CombatStyle      string   `json:"combat_style"`
	RoleplayStyle    string   `json:"roleplay_style"`

	Weapons []string `json:"weapons"`
	Armor   string   `json:"armor"`
	Items   []string `json:"items"`
}

// Clone returns a deep copy so the shared roster stays immutable
func (c *Companion) Clone() *Companion {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Traits = append([]string(nil), c.Traits...)
	clone.Weapons = append([]string(nil), c.Weapons...)
	clone.Items = append([]string(nil), c.Items...)
	return &clone
}

// ApplyDamage reduces HP, clamped to [0, MaxHP]
func (c *Companion) ApplyDamage(amount int) {
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

// Heal restores HP, clamped to [0, MaxHP]
func (c *Companion) Heal(amount int) {
	c.ApplyDamage(-amount)
}

// defaultParty is the fixed process-wide companion roster. Callers always
// receive clones; the roster itself is never handed out.
var defaultParty = []*Companion{
	{
		Name:             "Thorgar Ironbeard",
		Class:            ClassWarrior,
		Personality:      PersonalityBrave,
		VoiceID:          "dwarf_warrior",
		Level:            3,
		HP:               120,
		MaxHP:            120,
		AC:               18,
		VoiceDescription: "Gruff Dwarf Warrior - Bold and battle-hardened",
		Traits: []string{
			"Never backs down from a fight",
			"Extremely loyal to party members",
			"Loves ale and telling war stories",
			"Speaks in a gruff, direct manner",
		},
		CombatStyle:   "Aggressive front-line fighter, prefers melee combat",
		RoleplayStyle: "Speaks with dwarven accent, protective of party",
		Weapons:       []string{"Enchanted War Hammer", "Shield of Protection"},
		Armor:         "Plate Mail Armor",
		Items:         []string{"Healing Potions x3", "Rope", "Dwarven Ale"},
	},
	{
		Name:             "Elara Moonwhisper",
		Class:            ClassMage,
		Personality:      PersonalityWise,
		VoiceID:          "elf_mage",
		Level:            3,
		HP:               80,
		MaxHP:            80,
		AC:               12,
		VoiceDescription: "Elegant Elf Mage - Mystical and wise",
		Traits: []string{
			"Thoughtful and strategic in approach",
			"Fascinated by ancient magic and lore",
			"Often provides sage advice to the party",
			"Speaks eloquently with wisdom",
		},
		CombatStyle:   "Ranged spellcaster, prefers tactical magic",
		RoleplayStyle: "Speaks with elvish grace, offers magical insights",
		Weapons:       []string{"Staff of Arcane Power", "Crystal Orb"},
		Armor:         "Robes of Protection",
		Items:         []string{"Spellbook", "Magical Components", "Scrolls x5"},
	},
	{
		Name:             "Zara Swiftblade",
		Class:            ClassRogue,
		Personality:      PersonalityWitty,
		VoiceID:          "human_rogue",
		Level:            3,
		HP:               90,
		MaxHP:            90,
		AC:               16,
		VoiceDescription: "Cunning Human Rogue - Quick and clever",
		Traits: []string{
			"Quick-witted with a sharp tongue",
			"Expert at finding creative solutions",
			"Loves treasure and shiny objects",
			"Makes jokes even in dangerous situations",
		},
		CombatStyle:   "Stealth and precision strikes, avoids direct combat",
		RoleplayStyle: "Sarcastic humor, always looking for profit",
		Weapons:       []string{"Twin Daggers", "Shortbow"},
		Armor:         "Leather Armor",
		Items:         []string{"Thieves' Tools", "Caltrops", "Smoke Bombs x3"},
	},
	{
		Name:             "Brother Marcus",
		Class:            ClassCleric,
		Personality:      PersonalityProtective,
		VoiceID:          "wise_elder",
		Level:            3,
		HP:               100,
		MaxHP:            100,
		AC:               16,
		VoiceDescription: "Wise Elder - Ancient knowledge keeper",
		Traits: []string{
			"Deeply religious and moral",
			"Always helps party members in need",
			"Provides spiritual guidance and healing",
			"Speaks with calm wisdom and compassion",
		},
		CombatStyle:   "Support and healing, defensive combat when needed",
		RoleplayStyle: "Offers blessings and moral guidance",
		Weapons:       []string{"Holy Mace", "Shield of Faith"},
		Armor:         "Chain Mail",
		Items:         []string{"Holy Symbol", "Healing Herbs", "Prayer Beads"},
	},
}

// DefaultParty returns fresh copies of the fixed companion roster
func DefaultParty() []*Companion {
	party := make([]*Companion, len(defaultParty))
	for i, companion := range defaultParty {
		party[i] = companion.Clone()
	}
	return party
}
