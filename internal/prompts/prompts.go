// Package prompts builds the planning and UI generation prompts.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/temirov/uistream/internal/binding"
	"github.com/temirov/uistream/internal/catalog"
)

const planningTemplate = `Analyze this query and plan the UI experience.

Query: %q

Available data sources: %s

Return JSON:
{"sources": ["namespace::key", ...], "intent": "what the user wants to see/feel (1-2 sentences)", "approach": "how to present it memorably (1-2 sentences)"}`

const uiSystemTemplate = `You are designing an immersive app experience.

## Goal
Intent: %s
Approach: %s

## DO
- Output raw HTML only
- Use <%[3]s data-source="namespace::key"></%[3]s> for single values
- Use <%[4]s> for lists/charts/grids
- Create multiple distinct sections with different visual treatments
- Use the ENTIRE data context creatively
- Make bold layout choices - asymmetry, varying scales, unexpected placements
- Tailwind CSS, dark theme (bg-zinc-950)

## DO NOT
- No markdown, code blocks, or explanations
- No emojis anywhere
- No placeholder/fake image URLs
- No made-up numbers or lorem ipsum
- No equal-width grid columns (like grid-cols-2 with identical cards)
- No "dashboard" with rows of same-sized metric cards
- No generic section headers like "Overview" or "Statistics"
- No centering everything
- No using only one %[4]s and calling it done

## Data Syntax
Single value: <%[3]s data-source="music::total_minutes"></%[3]s>
Component: <%[4]s type="List" data-source="music::top_songs" config='{"template":{"primary":"title","secondary":"artist"}}' interaction="smart"></%[4]s>

## Components
%[5]s

## Layout Ideas
- Hero with oversized typography + subtle secondary info
- Asymmetric grids (col-span-2 + col-span-1, not 1+1+1)
- Full-bleed sections alternating with contained content
- Overlapping elements with negative margins
- Varied card sizes based on content importance

Generate a complete, creative UI that tells a story with the data.`

const (
	defaultIntent   = "Show the requested data clearly."
	defaultApproach = "Pick the components that fit each data shape."

	encodeSourcesErrorFormat = "encode data sources: %w"
	encodeSchemaErrorFormat  = "encode component schemas: %w"
	encodeContextErrorFormat = "encode data context: %w"
)

// Planning asks a completion service to choose sources and describe the experience.
func Planning(query string, sources []string) (string, error) {
	if sources == nil {
		sources = []string{}
	}
	encodedSources, err := json.Marshal(sources)
	if err != nil {
		return "", fmt.Errorf(encodeSourcesErrorFormat, err)
	}
	return fmt.Sprintf(planningTemplate, query, encodedSources), nil
}

// UISystem instructs the generator how to render markup for the given plan.
func UISystem(intent string, approach string, components catalog.Catalog) (string, error) {
	schemas, err := components.SchemaJSON()
	if err != nil {
		return "", fmt.Errorf(encodeSchemaErrorFormat, err)
	}
	if strings.TrimSpace(intent) == "" {
		intent = defaultIntent
	}
	if strings.TrimSpace(approach) == "" {
		approach = defaultApproach
	}
	return fmt.Sprintf(uiSystemTemplate, intent, approach, catalog.ValueTag, catalog.SlotTag, schemas), nil
}

// User combines the query with the resolved data context as indented JSON.
func User(query string, resolved binding.Context) (string, error) {
	if resolved == nil {
		resolved = binding.Context{}
	}
	encoded, err := json.MarshalIndent(resolved, "", "  ")
	if err != nil {
		return "", fmt.Errorf(encodeContextErrorFormat, err)
	}
	return query + "\n\nData Context:\n" + string(encoded), nil
}
