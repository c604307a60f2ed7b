package model

import "strconv"

// Partition is one of the two mutually exclusive top-level corpus partitions
// (the Currier language split).
type Partition string

const (
	PartitionA Partition = "A"
	PartitionB Partition = "B"
)

// Section identifies the manuscript section a folio belongs to.
type Section string

const (
	SectionHerbal  Section = "H" // herbal pages
	SectionAstro   Section = "A" // astronomical/zodiac pages
	SectionBio     Section = "B" // biological/balneological pages
	SectionPharma  Section = "P" // pharmaceutical pages
	SectionStars   Section = "S" // stars/recipes pages
	SectionCosmo   Section = "C" // cosmological pages
	SectionText    Section = "T" // text-only pages
	SectionUnknown Section = "?"
)

// PositionBucket is the coarse within-line position of a token, derived at
// index build from the word index and the line length.
type PositionBucket string

const (
	BucketFirst PositionBucket = "first"
	BucketEarly PositionBucket = "early"
	BucketMid   PositionBucket = "mid"
	BucketLate  PositionBucket = "late"
	BucketLast  PositionBucket = "last"
)

// Token is one whitespace-delimited unit of the transcription with its
// positional metadata. Tokens are immutable once read.
type Token struct {
	Raw         string    `json:"raw"`                  // Token text as transcribed
	Corpus      Partition `json:"corpus"`               // A or B
	Section     Section   `json:"section"`              // Manuscript section
	Folio       string    `json:"folio"`                // Folio identifier (e.g., "f78r")
	Line        int       `json:"line"`                 // Line index within folio (1-based)
	Word        int       `json:"word"`                 // Word index within line (0-based)
	Transcriber string    `json:"transcriber"`          // Transcriber tag (e.g., "H", "C", "F")
	Uncertain   bool      `json:"uncertain"`            // Glyph-level ambiguity noted by a transcriber
	Alternates  []string  `json:"alternates,omitempty"` // Divergent readings from other transcriber passes
}

// Locus returns the folio.line address of the token.
func (t Token) Locus() string {
	return t.Folio + "." + strconv.Itoa(t.Line)
}
