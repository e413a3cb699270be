package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BatchItem is one product descriptor in a batch prompt. ID keys the
// response back to the caller's record.
type BatchItem struct {
	ID    string
	Title string
	Brand string
	Type  string
}

const keywordSystem = "You generate concise e-commerce search keywords. " +
	"Respond with a single JSON object and nothing else."

// KeywordPrompt builds the batch keyword-generation prompt: one keyword of
// at most four words per item, keyed by ID in a JSON object.
func KeywordPrompt(items []BatchItem) (system, user string) {
	var b strings.Builder
	b.WriteString("Generate search keywords matching what customers type into search engines.\n\nInput Data:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- ID: %s\n  Product: %s\n  Brand: %s\n  Category: %s\n\n",
			item.ID, item.Title, item.Brand, item.Type)
	}
	b.WriteString(`Rules, in priority order:
1. LENGTH: at most 4 words. Formula: Brand + Product Type + optional differentiator.
2. REMOVE size and volume units (750ml, 24x330ml, 70cl, 1kg).
3. SIMPLIFY age statements: "12 Year Old" becomes "12yr", or drop it for well-known brands.
4. REMOVE gift and personalization language (personalised, hamper, gift set).
5. REMOVE vintage years (2022, 2023) unless brand-critical.
6. REMOVE case and multipack descriptors (mixed case, tasting set, selection).
7. DEDUPLICATE repeated words.
8. NORMALIZE accents to ASCII (rose, chateau).
9. REMOVE promotional language (offer, deal, limited edition).
10. REMOVE ABV and proof statements (40% ABV, 100 proof).
11. REMOVE retailer and merchant names.

Examples:
- "Personalised Luxury Grey Goose Vodka Hamper Gift 750ml" -> "Grey Goose Vodka"
- "Lagavulin 16 Year Old Single Malt Whisky" -> "Lagavulin 16yr Whisky"
- "Buy Bonkers Conkers Ale Greene King Shop" -> "Bonkers Conkers Ale"

Output format, JSON only:
{"0": "Brand Product Type", "1": "Brand Product Type"}
`)
	return keywordSystem, b.String()
}

const categorySystem = "You classify e-commerce products into a fixed category list. " +
	"Respond with a single JSON object and nothing else."

// CategoryPrompt builds the batch category-fallback prompt. Allowed lists
// the exact category paths the model may answer with; the caller has
// already removed "Other" so the model must commit to a real category.
func CategoryPrompt(productType string, allowed []string, items []BatchItem) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Product Type: %s\n\nAvailable Categories:\n", productType)
	for _, cat := range allowed {
		fmt.Fprintf(&b, "- %s\n", cat)
	}
	b.WriteString("\nProducts to Classify:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- ID: %s\n  Product: %s\n  Brand: %s\n\n", item.ID, item.Title, item.Brand)
	}
	b.WriteString(`Instructions:
1. Return a JSON object keyed by ID with the best matching category name as value.
2. Use the EXACT category name as listed, including " > " separators.
3. Focus on the product type, not the brand.

Output format, JSON only:
{"0": "Category > Subcategory", "1": "Category > Subcategory"}
`)
	return categorySystem, b.String()
}

// ParseBatchResponse decodes a JSON object of ID to answer, tolerating
// markdown code fences around the payload.
func ParseBatchResponse(text string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	out := make(map[string]string)
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("llm: malformed batch response: %w", err)
	}
	return out, nil
}
