package models

// Verse is a Bhagavad Gita verse shown on the teachings tab.
type Verse struct {
	Sanskrit    string
	Translation string
	Ref         string
}

// Pillar is one of the commitment screen's promised transformations.
type Pillar struct {
	Title  string
	Hindi  string
	Points []string
}

// DailyContent is what the dashboard shows for a given day.
type DailyContent struct {
	Day   int
	Quote string
	Verse Verse
}

var DailyQuotes = []string{
	"Today I choose strength over weakness.",
	"Veerya (vital energy) is the essence of life. Protect it.",
	"A disciplined mind brings happiness.",
	"He who conquers himself is the mightiest warrior.",
	"Energy flows where attention goes.",
}

var GitaVerses = []Verse{
	{Sanskrit: "क्रोधाद्भवति सम्मोह: सम्मोहात्स्मृतिविभ्रम: |", Translation: "From anger comes delusion; from delusion, confusion of memory.", Ref: "2.63"},
	{Sanskrit: "कर्मण्येवाधिकारस्ते मा फलेषु कदाचन |", Translation: "You have a right to perform your prescribed duties, but you are not entitled to the fruits of your actions.", Ref: "2.47"},
	{Sanskrit: "उद्धरेदात्मनात्मानं नात्मानमवसादयेत् |", Translation: "Elevate yourself through the power of your mind, and not degrade yourself.", Ref: "6.5"},
}

// Reasons are the intentions offered during onboarding.
var Reasons = []struct {
	Text string
	Sub  string
}{
	{"I'm tired of being controlled by my urges", "I want to take back control of my mind and body."},
	{"I want to rebuild my discipline and self-respect", "I want to feel proud of myself again."},
	{"I want more energy, focus, and clarity", "My mind feels drained and I want to fix it."},
	{"I want to break my porn & masturbation addiction", "I'm stuck in a loop and I want to end it."},
	{"I want to improve my physical and mental health", "I want better sleep, better mood, better confidence."},
	{"I want a spiritual reset and a deeper connection with myself", "I want to follow a path of purity, strength, and the Gita."},
	{"I want to transform myself in these 108 days", "I'm ready to become a stronger version of myself."},
}

var Pillars = []Pillar{
	{Title: "Physical Transformation", Hindi: "शारीरिक परिवर्तन", Points: []string{"Increased energy (Ojas) and vitality", "Deep restorative sleep", "Enhanced physical strength", "Radiant skin (Tejas)"}},
	{Title: "Mental Clarity", Hindi: "मानसिक स्पष्टता", Points: []string{"Sharp focus (Ekagrata)", "Improved memory", "Reduced anxiety and brain fog", "Decisive willpower"}},
	{Title: "Spiritual Growth", Hindi: "आध्यात्मिक वृद्धि", Points: []string{"Connection with inner self (Atman)", "Enhanced meditation", "Purpose and Dharma", "Awakening spiritual energy"}},
	{Title: "Life Success", Hindi: "जीवन में सफलता", Points: []string{"Magnetic personality", "Better relationships", "Career excellence", "Respect and admiration"}},
}

const BreathingPractice = "When an urge arises, do 10 deep belly breaths. Visualize the energy moving up from your spine to your brain (Ojas)."

// ContentFor picks the quote and verse for day.
func ContentFor(day int) DailyContent {
	if day < 0 {
		day = 0
	}
	return DailyContent{
		Day:   day,
		Quote: DailyQuotes[day%len(DailyQuotes)],
		Verse: GitaVerses[day%len(GitaVerses)],
	}
}
