package story

// guidance is built once and never written after package initialisation.
var guidance = map[Category]string{
	CategoryAdventure:   "Action-packed but safe. Journey, obstacles, exciting discoveries.",
	CategoryFantasy:     "Magical and imaginative. Magic, mythical creatures, enchanted places.",
	CategoryEducational: "Fun learning. Interesting facts, discovery, curiosity.",
	CategoryFriendship:  "Warm relationships. Cooperation, kindness, helping others.",
	CategoryCourage:     "Overcoming fears. Facing challenges, building confidence.",
	CategoryAnimal:      "Animal characters. Animal behaviors, nature, friendships.",
}

// GuidanceFor returns the style guidance for c, falling back to the adventure
// guidance for a category the table does not know.
func GuidanceFor(c Category) string {
	if g, ok := guidance[c]; ok {
		return g
	}
	return guidance[CategoryAdventure]
}
