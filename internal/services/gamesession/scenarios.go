package gamesession

// Scenario is one of the fixed opening templates a new session starts from
type Scenario struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Setting     string `json:"setting"`
	Mood        string `json:"mood"`
	VoiceID     string `json:"voice_id"`
}

var openingScenarios = []*Scenario{
	{
		Title:       "The Enchanted Caverns",
		Description: "Your party of brave adventurers stands before the entrance to the legendary Enchanted Caverns. Ancient runes glow faintly on the stone archway, and a cool breeze carries whispers of forgotten magic from within.",
		Setting:     "Mysterious cave entrance in an ancient forest",
		Mood:        "mysterious and adventurous",
		VoiceID:     "dm_narrator",
	},
	{
		Title:       "The Dragon's Lair",
		Description: "The mountain path has led your party to a massive cavern filled with glittering treasure. But somewhere in the darkness, you hear the slow, rhythmic breathing of something immense and ancient.",
		Setting:     "Dragon's treasure-filled lair",
		Mood:        "tense and dangerous",
		VoiceID:     "dm_narrator",
	},
	{
		Title:       "The Lost Temple",
		Description: "After days of searching, your party has discovered the Lost Temple of Aethros. Vines have claimed much of the ancient structure, but the magical aura emanating from within suggests powerful artifacts still remain.",
		Setting:     "Ancient temple ruins",
		Mood:        "mystical and intriguing",
		VoiceID:     "dm_narrator",
	},
}
