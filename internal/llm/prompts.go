package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/clash-cost/internal/model"
)

const (
	proposeSystemInstruction = "You are a JSON-only API helper. Output strictly a valid JSON array. " +
		"The 'name' property MUST be a short string (under 10 words). " +
		"The 'description' property contains the detailed explanation. Do not wrap in markdown."
	matchSystemInstruction = "You are a helpful estimator. Find matching works generously. " +
		"Even weak matches are better than no matches. Output JSON."
)

func extractLanguageHint(lang model.Language) string {
	if lang == model.LanguageRussian {
		return "Output ONLY in Russian language. Default currency to 'RUB' (₽) if ambiguous."
	}
	return "Output ONLY in English language. Default currency to 'USD' ($)."
}

func proposeLanguageHint(lang model.Language) string {
	if lang == model.LanguageRussian {
		return "Output strictly in Russian language."
	}
	return "Output strictly in English language."
}

func buildExtractPrompt(source string, category model.CategoryDescriptor, lang model.Language) string {
	var sb strings.Builder

	sb.WriteString("Act as a construction cost estimator.\n")
	fmt.Fprintf(&sb, "Target URL context: %s\n\n", source)
	sb.WriteString("Task: Extract exactly 20 construction work items from the context that are MOST RELEVANT to the following discipline:\n")
	fmt.Fprintf(&sb, "Code: %s\nName: %s\nDescription: %s\nKeywords: %s\n\n",
		category.Code, category.Name, category.Description, category.Keywords)
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("1. Prioritize works that match the Keywords.\n")
	sb.WriteString("2. If specific works are not found, include general construction works.\n")
	sb.WriteString("3. Do NOT include the full HTML.\n")
	sb.WriteString("4. Return ONLY valid JSON.\n")
	sb.WriteString("5. Extract the currency symbol or code if visible.\n\n")
	sb.WriteString(extractLanguageHint(lang))
	sb.WriteString("\n\nReturn JSON:\n")
	sb.WriteString(`{"items": [{"name": "Drilling D50mm", "price": 1500, "currency": "RUB", "unit": "pcs"}]}`)

	return sb.String()
}

func buildScorePrompt(items []RawItem, category model.CategoryDescriptor) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	namesJSON, err := json.Marshal(names)
	if err != nil {
		namesJSON = []byte("[]")
	}

	var sb strings.Builder
	sb.WriteString("You are an expert construction engineer specializing in BIM and collision resolution.\n\n")
	sb.WriteString("Task: Evaluate relevance of construction works for resolving collisions in the Target Category.\n\n")
	fmt.Fprintf(&sb, "Target Category: %s\nCategory Description: %s\nKey Related Terms: %s\n\n",
		category.Name, category.Description, category.Keywords)
	sb.WriteString("Scoring Rules:\n")
	sb.WriteString("1. High Score (0.8 - 1.0): Work explicitly mentions materials or methods specific to this category.\n")
	sb.WriteString("2. Medium Score (0.5 - 0.7): General construction works plausible for this category.\n")
	sb.WriteString("3. Low Score (0.0 - 0.2): Unrelated works.\n\n")
	fmt.Fprintf(&sb, "Works Input: %s\n\n", namesJSON)
	sb.WriteString("Return JSON array of objects with 'name' and 'score'.")

	return sb.String()
}

func buildProposePrompt(row, col model.CategoryDescriptor, lang model.Language) string {
	var sb strings.Builder
	sb.WriteString("Role: Senior Construction Engineer.\n")
	fmt.Fprintf(&sb, "Task: Provide 3 standard construction solutions for when a %q element collides with a %q element.\n",
		row.Code+" "+row.Name, col.Code+" "+col.Name)
	fmt.Fprintf(&sb, "Focus on modifying the %s (Row element).\n\n", row.Name)
	sb.WriteString("If a specific solution isn't obvious, provide generic standard resolutions such as \"Local Shift\", \"Change Cross-Section\", or \"Rerouting\".\n\n")
	sb.WriteString("Requirements:\n")
	sb.WriteString("1. Name: A short title (2-5 words).\n")
	sb.WriteString("2. Description: A practical technical explanation of the work required.\n\n")
	sb.WriteString(proposeLanguageHint(lang))
	return sb.String()
}

type promptWork struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

func buildMatchPrompt(resolution Resolution, works []model.WorkItem) string {
	list := make([]promptWork, len(works))
	for i, w := range works {
		list[i] = promptWork{ID: w.ID, Name: w.Name, Unit: w.Unit}
	}
	listJSON, err := json.Marshal(list)
	if err != nil {
		listJSON = []byte("[]")
	}

	var sb strings.Builder
	sb.WriteString("Role: Construction Cost Estimator.\n")
	sb.WriteString("Task: Identify items from the \"Available Works\" list that are required to perform the construction scenario described below.\n\n")
	fmt.Fprintf(&sb, "Scenario Name: %s\nDescription: %s\n\n", resolution.Name, resolution.Description)
	fmt.Fprintf(&sb, "Available Works: %s\n\n", listJSON)
	sb.WriteString("Instructions:\n")
	sb.WriteString("1. Select ALL works that seem relevant to the scenario description.\n")
	sb.WriteString("2. If an exact match isn't found, pick the closest functional equivalent.\n")
	sb.WriteString("3. Be generous in selection.\n")
	sb.WriteString("4. Return an empty array ONLY if absolutely no works are relevant.\n\n")
	sb.WriteString("Output Format: JSON Array of objects with 'workId' and 'quantity'.")
	return sb.String()
}
