package llm

import (
	"strings"
	"testing"
)

func TestKeywordPromptListsItems(t *testing.T) {
	_, user := KeywordPrompt([]BatchItem{
		{ID: "0", Title: "Grey Goose Vodka 750ml", Brand: "Grey Goose", Type: "Alcoholic Beverages"},
		{ID: "1", Title: "Pedigree Dog Food 2kg", Brand: "Pedigree", Type: "Pets"},
	})

	for _, want := range []string{"ID: 0", "ID: 1", "Grey Goose Vodka 750ml", "at most 4 words"} {
		if !strings.Contains(user, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestCategoryPromptListsAllowed(t *testing.T) {
	_, user := CategoryPrompt("Alcoholic Beverages",
		[]string{"Beer > Lager", "Wine > Red Wine"},
		[]BatchItem{{ID: "7", Title: "Stella Artois", Brand: "Stella Artois"}})

	for _, want := range []string{"Beer > Lager", "Wine > Red Wine", "ID: 7", "EXACT category name"} {
		if !strings.Contains(user, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestParseBatchResponse(t *testing.T) {
	got, err := ParseBatchResponse(`{"0": "Grey Goose Vodka", "1": "Pedigree Dog Food"}`)
	if err != nil {
		t.Fatalf("ParseBatchResponse: %v", err)
	}
	if got["0"] != "Grey Goose Vodka" || got["1"] != "Pedigree Dog Food" {
		t.Errorf("unexpected map %v", got)
	}
}

func TestParseBatchResponseFenced(t *testing.T) {
	text := "```json\n{\"0\": \"Beer > Lager\"}\n```"
	got, err := ParseBatchResponse(text)
	if err != nil {
		t.Fatalf("ParseBatchResponse fenced: %v", err)
	}
	if got["0"] != "Beer > Lager" {
		t.Errorf("unexpected map %v", got)
	}
}

func TestParseBatchResponseMalformed(t *testing.T) {
	if _, err := ParseBatchResponse("not json at all"); err == nil {
		t.Fatal("expected error for malformed response")
	}
}
