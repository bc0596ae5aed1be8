package scoring

import "github.com/agenthands/ontoscope/internal/core/model"

// pattern proposes a named relationship when one label contains wordA and
// the other contains wordB. The table is ordered: the first hit wins.
type pattern struct {
	wordA       string
	wordB       string
	name        string
	cardinality model.Cardinality
	confidence  int
}

var relationPatterns = []pattern{
	{"customer", "order", "places_order", model.OneToMany, 95},
	{"order", "product", "contains_product", model.ManyToMany, 90},
	{"order", "item", "has_line_item", model.OneToMany, 90},
	{"customer", "invoice", "billed_with", model.OneToMany, 90},
	{"invoice", "payment", "settled_by", model.OneToMany, 85},
	{"product", "category", "belongs_to_category", model.ManyToOne, 85},
	{"employee", "department", "works_in", model.ManyToOne, 85},
	{"company", "employee", "employs", model.OneToMany, 85},
	{"user", "role", "has_role", model.ManyToMany, 85},
	{"student", "course", "enrolls_in", model.ManyToMany, 85},
	{"author", "book", "writes", model.OneToMany, 85},
	{"artist", "album", "records", model.OneToMany, 80},
	{"album", "track", "contains_track", model.OneToMany, 80},
	{"supplier", "product", "supplies", model.OneToMany, 80},
	{"account", "transaction", "posts", model.OneToMany, 80},
}

// reverseNames maps a forward relationship to the name used when the
// label pair matches in the opposite order. Missing entries fall back to
// the generic relates_to.
var reverseNames = map[string]string{
	"places_order":        "placed_by",
	"contains_product":    "included_in",
	"has_line_item":       "belongs_to_order",
	"billed_with":         "billed_to",
	"settled_by":          "settles",
	"belongs_to_category": "categorizes",
	"works_in":            "staffed_by",
	"employs":             "works_for",
	"has_role":            "assigned_to",
	"writes":              "written_by",
	"records":             "recorded_by",
	"contains_track":      "appears_on",
	"supplies":            "supplied_by",
	"posts":               "posted_to",
}

const genericRelationName = "relates_to"

func reverseName(forward string) string {
	if rev, ok := reverseNames[forward]; ok {
		return rev
	}
	return genericRelationName
}

func reverseCardinality(c model.Cardinality) model.Cardinality {
	switch c {
	case model.OneToMany:
		return model.ManyToOne
	case model.ManyToOne:
		return model.OneToMany
	default:
		return c
	}
}
