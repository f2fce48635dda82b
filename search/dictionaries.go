package search

// DefaultTags is the built-in technology dictionary used when the caller
// doesn't supply its own allow-list.
var DefaultTags = []string{
	"React",
	"Angular",
	"Vue",
	"Node.js",
	"JavaScript",
	"TypeScript",
	"HTML",
	"CSS",
	"Sass",
	"Java",
	"Kotlin",
	"Python",
	"Django",
	"Flask",
	"PHP",
	"Laravel",
	"Symfony",
	"Ruby",
	"Rails",
	"Go",
	"Rust",
	"C++",
	"C#",
	".NET",
	"Unity",
	"Unreal Engine",
	"Swift",
	"Flutter",
	"Android",
	"iOS",
	"SQL",
	"MySQL",
	"PostgreSQL",
	"MongoDB",
	"Redis",
	"Oracle",
	"Docker",
	"Kubernetes",
	"AWS",
	"Azure",
	"GCP",
	"Linux",
	"Git",
	"Jenkins",
	"Terraform",
	"Spring",
	"Excel",
	"Power BI",
	"Tableau",
	"Photoshop",
	"Illustrator",
	"WordPress",
	"SAP",
}

// excludedTokens are description words that produce false positives against
// short technology names, mostly Spanish and English filler found in
// computrabajo listings.
var excludedTokens = map[string]struct{}{
	"a":            {},
	"an":           {},
	"and":          {},
	"are":          {},
	"as":           {},
	"at":           {},
	"be":           {},
	"by":           {},
	"con":          {},
	"como":         {},
	"de":           {},
	"del":          {},
	"desarrollo":   {},
	"e":            {},
	"el":           {},
	"en":           {},
	"empresa":      {},
	"equipo":       {},
	"experiencia":  {},
	"for":          {},
	"from":         {},
	"in":           {},
	"is":           {},
	"la":           {},
	"las":          {},
	"lo":           {},
	"looking":      {},
	"los":          {},
	"nuestra":      {},
	"nuestro":      {},
	"o":            {},
	"of":           {},
	"on":           {},
	"or":           {},
	"para":         {},
	"por":          {},
	"que":          {},
	"se":           {},
	"ser":          {},
	"su":           {},
	"the":          {},
	"to":           {},
	"trabajo":      {},
	"un":           {},
	"una":          {},
	"we":           {},
	"with":         {},
	"y":            {},
	"conocimiento": {},
}
