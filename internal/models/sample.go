package models

// Sample is a code artifact with a set of seeded defects
type Sample struct {
	ID              int
	Title           string
	Language        string
	CorrectArtifact string
	Defects         []Defect
}

// Defect is a bugged variant of a sample
type Defect struct {
	// Content is the bugged code
	Content string

	// Description explains the defect after the round
	Description string
}
