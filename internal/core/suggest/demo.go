package suggest

import "github.com/agenthands/ontoscope/internal/core/model"

// Demo suggestions served when no LLM is configured or its output is
// unusable. Copies are returned so callers can mutate freely.
var demoSuggestions = map[model.SuggestionKind][]model.Suggestion{
	model.SuggestionOntologyClass: {
		{
			ID:          "cls_001",
			Kind:        model.SuggestionOntologyClass,
			Title:       "Add Customer Entity",
			Description: "A class to represent customer entities with their attributes and relationships",
			Confidence:  0.92,
			ClassName:   "Customer",
			Properties:  []string{"email", "customer_id", "registration_date", "loyalty_status"},
			Rationale:   "Customers are central entities that need proper ontological representation",
			Tags:        []string{"customer", "business", "entity"},
		},
		{
			ID:             "cls_002",
			Kind:           model.SuggestionOntologyClass,
			Title:          "Add Order Entity",
			Description:    "Represents order transactions with temporal and financial aspects",
			Confidence:     0.88,
			Implementation: "Create a class with fields [order_id, order_date, total_amount, status]",
			Rationale:      "Orders are key business events connecting customers to products",
			Tags:           []string{"order", "transaction", "business"},
		},
	},
	model.SuggestionProperty: {
		{
			ID:             "prop_001",
			Kind:           model.SuggestionProperty,
			Title:          "Add LoyaltyStatus Property",
			Description:    "Tracks the loyalty tier of a customer",
			Confidence:     0.85,
			Implementation: "Add LoyaltyStatus to the customer entity",
			Rationale:      "Loyalty tiers drive discount and retention logic",
			Tags:           []string{"customer", "property"},
		},
	},
	model.SuggestionRelationship: {
		{
			ID:               "rel_001",
			Kind:             model.SuggestionRelationship,
			Title:            "Customer-Order Relationship",
			Description:      "One-to-many relationship between customers and their orders",
			Confidence:       0.93,
			RelationshipName: "places_order",
			Cardinality:      model.OneToMany,
			Rationale:        "Fundamental business relationship for tracking customer behavior",
			Tags:             []string{"customer", "order"},
		},
	},
	model.SuggestionEnhancement: {
		{
			ID:          "enh_001",
			Kind:        model.SuggestionEnhancement,
			Title:       "Track order quantities",
			Description: "The contains_product relationship should carry quantity details per line",
			Confidence:  0.8,
			Rationale:   "Quantity attributes enable revenue analysis per relationship",
			Tags:        []string{"enhancement", "quantity"},
		},
	},
}

func DemoSuggestions(kind model.SuggestionKind) []model.Suggestion {
	src := demoSuggestions[kind]
	out := make([]model.Suggestion, len(src))
	for i, s := range src {
		s.Properties = append([]string(nil), s.Properties...)
		s.Tags = append([]string(nil), s.Tags...)
		out[i] = s
	}
	return out
}
