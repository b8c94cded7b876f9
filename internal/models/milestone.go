package models

// Milestone is celebratory only; it never gates anything.
type Milestone struct {
	Day         int
	Title       string
	Subtitle    string
	Description string
}

var MilestoneCatalog = []Milestone{
	{Day: 7, Title: "Discipline Warrior", Subtitle: "First Week Champion", Description: "Complete 7 days of unwavering commitment"},
	{Day: 37, Title: "Energy Master", Subtitle: "Power Unleashed", Description: "Harness 37 days of pure brahmacharya energy"},
	{Day: 79, Title: "Transformation Guardian", Subtitle: "Diamond Mind", Description: "Witness 79 days of complete metamorphosis"},
	{Day: 108, Title: "Sacred Completion", Subtitle: "Brahmacharya Master Certificate", Description: "Achieve the ultimate 108-day mastery"},
}

// MalaMarkers are the beads drawn larger on the mala tracker.
var MalaMarkers = []int{7, 21, 40, 60, 90, 108}
