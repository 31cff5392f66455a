package llm

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/clash-cost/internal/model"
)

// Defaults applied to extracted items with missing fields.
const (
	DefaultItemName = "Unknown Work"
	DefaultItemUnit = "unit"
	// AutoFixName replaces a proposal name that was really a description.
	AutoFixName         = "Proposed Solution (Auto-fix)"
	unknownScenarioName = "Unknown Scenario"

	longNameWords   = 15
	shortNameWords  = 8
	extractMaxToken = 8000
	scoreMaxToken   = 4000
	proposeMaxToken = 2000
	matchMaxToken   = 2000
)

// RawItem is an extracted, not yet scored, work item.
type RawItem struct {
	Name     string
	Currency string
	Unit     string
	Price    float64
}

// ExtractResult is the output of ExtractItems.
type ExtractResult struct {
	Items      []RawItem
	TokensUsed int
	Status     int
}

// ItemScore is the relevance of one item name to a category.
type ItemScore struct {
	Name  string
	Score float64
}

// ScoreResult is the output of ScoreItems.
type ScoreResult struct {
	Scores     []ItemScore
	TokensUsed int
	Status     int
}

// ScoreFor returns the score of the first entry whose name equals name,
// or 0 when there is none.
func (r ScoreResult) ScoreFor(name string) float64 {
	for _, s := range r.Scores {
		if s.Name == name {
			return s.Score
		}
	}
	return 0
}

// Resolution is a proposed remedy for a collision.
type Resolution struct {
	Name        string
	Description string
}

// ProposeResult is the output of ProposeResolutions.
type ProposeResult struct {
	Raw         string
	Resolutions []Resolution
	TokensUsed  int
	Status      int
}

// Match pairs a resolved work item with a quantity.
type Match struct {
	WorkID   string
	Quantity float64
}

// MatchResult is the output of MatchItems. Matches may be empty.
type MatchResult struct {
	Raw        string
	Matches    []Match
	TokensUsed int
	Status     int
}

var extractSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"items": ArrayOf(map[string]*Schema{
			"name":     {Type: TypeString},
			"price":    {Type: TypeNumber},
			"currency": {Type: TypeString, Description: "Currency symbol or code (e.g. $, ₽, RUB, USD)"},
			"unit":     {Type: TypeString},
		}),
	},
}

var scoreSchema = ArrayOf(map[string]*Schema{
	"name":  {Type: TypeString},
	"score": {Type: TypeNumber},
})

var proposeSchema = ArrayOf(map[string]*Schema{
	"name":        {Type: TypeString},
	"description": {Type: TypeString},
})

var matchSchema = ArrayOf(map[string]*Schema{
	"workId":   {Type: TypeString},
	"quantity": {Type: TypeNumber},
})

var allHarmCategories = []HarmCategory{HarmDangerousContent, HarmHarassment, HarmHateSpeech, HarmSexuallyExplicit}

// ExtractItems asks the backend for priced work items relevant to category.
func (e *Estimator) ExtractItems(ctx context.Context, source string, category model.CategoryDescriptor, lang model.Language) (ExtractResult, error) {
	resp, err := e.generate(ctx, StageExtract, Request{
		Prompt:          buildExtractPrompt(source, category, lang),
		Schema:          extractSchema,
		MaxOutputTokens: extractMaxToken,
		JSON:            true,
	})
	if err != nil {
		return ExtractResult{}, err
	}

	result := ExtractResult{TokensUsed: resp.TokensUsed, Status: resp.Status}

	doc, ok := RecoverJSON(resp.Text)
	if !ok {
		return result, malformed(StageExtract, resp.Text)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(doc, &obj); err != nil {
		return result, malformed(StageExtract, resp.Text)
	}
	itemsDoc, ok := obj["items"]
	if !ok || !isJSONArray(itemsDoc) {
		return result, malformed(StageExtract, resp.Text)
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(itemsDoc, &rawItems); err != nil {
		return result, malformed(StageExtract, resp.Text)
	}

	for _, raw := range rawItems {
		fields := decodeObject(raw)
		currency, _ := fields["currency"].(string)
		result.Items = append(result.Items, RawItem{
			Name:     stringField(fields, "name", DefaultItemName),
			Price:    coercePrice(fields["price"]),
			Currency: currency,
			Unit:     stringField(fields, "unit", DefaultItemUnit),
		})
	}

	if len(result.Items) == 0 {
		return result, emptyResult(StageExtract, "no items extracted for category %s", category.Code)
	}
	return result, nil
}

// ScoreItems asks the backend to rate each item's relevance to category.
// Anything other than an array is treated as no scores.
func (e *Estimator) ScoreItems(ctx context.Context, items []RawItem, category model.CategoryDescriptor) (ScoreResult, error) {
	resp, err := e.generate(ctx, StageScore, Request{
		Prompt:          buildScorePrompt(items, category),
		Schema:          scoreSchema,
		MaxOutputTokens: scoreMaxToken,
		JSON:            true,
	})
	if err != nil {
		return ScoreResult{}, err
	}

	result := ScoreResult{TokensUsed: resp.TokensUsed, Status: resp.Status}

	doc, ok := RecoverJSON(resp.Text)
	if !ok || !isJSONArray(doc) {
		return result, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(doc, &entries); err != nil {
		return result, nil
	}

	for _, raw := range entries {
		fields := decodeObject(raw)
		name, _ := fields["name"].(string)
		score, _ := fields["score"].(float64)
		result.Scores = append(result.Scores, ItemScore{Name: name, Score: clampScore(score)})
	}
	return result, nil
}

// ProposeResolutions asks the backend for remedies when a row element
// collides with a column element.
func (e *Estimator) ProposeResolutions(ctx context.Context, row, col model.CategoryDescriptor, lang model.Language) (ProposeResult, error) {
	resp, err := e.generate(ctx, StagePropose, Request{
		Prompt:            buildProposePrompt(row, col, lang),
		SystemInstruction: proposeSystemInstruction,
		Schema:            proposeSchema,
		Safety:            allHarmCategories,
		MaxOutputTokens:   proposeMaxToken,
		JSON:              true,
	})
	if err != nil {
		return ProposeResult{}, err
	}

	result := ProposeResult{Raw: resp.Text, TokensUsed: resp.TokensUsed, Status: resp.Status}

	doc, ok := RecoverJSON(resp.Text)
	if !ok {
		return result, malformed(StagePropose, resp.Text)
	}

	entries, _ := recoverArray(doc, "scenarios", "items")
	for _, raw := range entries {
		fields := decodeObject(raw)
		result.Resolutions = append(result.Resolutions, repairResolution(
			stringField(fields, "name", unknownScenarioName),
			stringField(fields, "description", ""),
		))
	}

	if len(result.Resolutions) == 0 {
		return result, emptyResult(StagePropose, "zero scenarios returned")
	}
	return result, nil
}

// repairResolution fixes proposals whose description landed in the name.
func repairResolution(name, description string) Resolution {
	words := strings.Split(name, " ")
	if len(words) > longNameWords && len(description) < len(name) {
		if description == "" {
			return Resolution{Name: AutoFixName, Description: name}
		}
		return Resolution{Name: strings.Join(words[:shortNameWords], " ") + "...", Description: description}
	}
	return Resolution{Name: name, Description: description}
}

// MatchItems asks the backend which candidate works a resolution needs.
// References resolve by id first, then by exact name; unresolved ones are
// dropped. An empty result is not an error.
func (e *Estimator) MatchItems(ctx context.Context, resolution Resolution, candidates []model.WorkItem) (MatchResult, error) {
	resp, err := e.generate(ctx, StageMatch, Request{
		Prompt:            buildMatchPrompt(resolution, candidates),
		SystemInstruction: matchSystemInstruction,
		Schema:            matchSchema,
		Safety:            []HarmCategory{HarmDangerousContent},
		MaxOutputTokens:   matchMaxToken,
		JSON:              true,
	})
	if err != nil {
		return MatchResult{}, err
	}

	result := MatchResult{Raw: resp.Text, TokensUsed: resp.TokensUsed, Status: resp.Status}

	doc, ok := RecoverJSON(resp.Text)
	if !ok {
		return result, nil
	}
	entries, _ := recoverArray(doc, "matches", "items")

	for _, raw := range entries {
		fields := decodeObject(raw)
		ref, _ := fields["workId"].(string)
		id, found := resolveWork(ref, candidates)
		if !found {
			continue
		}
		result.Matches = append(result.Matches, Match{WorkID: id, Quantity: ParseQuantity(fields["quantity"])})
	}
	return result, nil
}

func resolveWork(ref string, candidates []model.WorkItem) (string, bool) {
	if ref == "" {
		return "", false
	}
	for _, w := range candidates {
		if w.ID == ref {
			return w.ID, true
		}
	}
	for _, w := range candidates {
		if w.Name == ref {
			return w.ID, true
		}
	}
	return "", false
}

// ParseQuantity parses a positive real quantity. Anything missing,
// non-numeric, non-finite or not positive becomes 1.
func ParseQuantity(v any) float64 {
	var q float64
	switch val := v.(type) {
	case float64:
		q = val
	case float32:
		q = float64(val)
	case int:
		q = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 1
		}
		q = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 1
		}
		q = f
	default:
		return 1
	}
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return 1
	}
	return q
}

// coercePrice accepts numbers and numeric strings. Anything else, and any
// negative or non-finite value, is 0.
func coercePrice(v any) float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case json.Number:
		n, err := val.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func clampScore(score float64) float64 {
	switch {
	case math.IsNaN(score) || score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
