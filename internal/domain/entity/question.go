package entity

// Question is one row of the question sheet, validated and defaulted at the
// source boundary so downstream code never deals with missing fields.
type Question struct {
	Number     string
	Statement  string
	Genre      string
	Difficulty string
	Curator    string
	Hints      []string
}
