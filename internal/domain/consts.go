package domain

// Difficulty tiers as they appear in the question sheet.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// DifficultyColors maps a difficulty tier to the attachment color used when
// posting. Unknown tiers fall back to DefaultColor.
var DifficultyColors = map[string]string{
	DifficultyEasy:   "#00ff00",
	DifficultyMedium: "#ffbf00",
	DifficultyHard:   "#ff0000",
}

// DefaultColor is used for difficulties outside the known tiers.
const DefaultColor = "#3498db"

// Defaults applied at the question-source boundary when a sheet cell is empty.
const (
	DefaultNumber     = "?"
	DefaultStatement  = "No statement."
	DefaultGenre      = "General"
	DefaultDifficulty = DifficultyMedium
	DefaultCurator    = "Anonymous"
)

// MaxHints is the number of hint columns read from the sheet.
const MaxHints = 3

// DayKeyLayout is the format of the ledger's deduplication key: the calendar
// date in the configured posting time zone.
const DayKeyLayout = "2006-01-02"
