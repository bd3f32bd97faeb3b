package content

import "time"

// Language is a supported post language code.
type Language string

const (
	LangEN Language = "en"
	LangKO Language = "ko"
)

// Frontmatter is the structured preamble of a post file. Missing fields
// stay at their zero values; metadata is assumed language-invariant and the
// English variant is authoritative for shared fields.
type Frontmatter struct {
	Title    string   `yaml:"title"`
	Excerpt  string   `yaml:"excerpt"`
	Date     string   `yaml:"date"`
	ReadTime string   `yaml:"readTime"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Image    string   `yaml:"image"`
}

// SourceDocument is one parsed post file. Immutable after parse.
type SourceDocument struct {
	Slug        string
	Lang        Language
	Frontmatter Frontmatter
	Body        string
	ModTime     time.Time
}

// IndexEntry is the public summary of a complete language pair.
type IndexEntry struct {
	Slug      string   `json:"slug"`
	TitleEN   string   `json:"titleEn"`
	TitleKO   string   `json:"titleKo"`
	ExcerptEN string   `json:"excerptEn"`
	ExcerptKO string   `json:"excerptKo"`
	Date      string   `json:"date"`
	ReadTime  string   `json:"readTime"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Image     string   `json:"image"`
}

// CompiledPost is an IndexEntry plus both bodies rendered to HTML.
type CompiledPost struct {
	IndexEntry
	ContentEN string `json:"contentEn"`
	ContentKO string `json:"contentKo"`
}
