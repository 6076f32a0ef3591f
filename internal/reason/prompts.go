package reason

import (
	"encoding/json"
	"fmt"

	"github.com/dkaryakin/inflow/internal/model"
)

// dateSemanticsRules is shared by the mapping and enrichment prompts.
// The three date kinds a classification carries are distinct; substituting
// one for another without explicit user intent is a defect.
const dateSemanticsRules = `DATE SEMANTICS - three distinct kinds, never substitute one for another:
1. do_date: when the user intends to act ("watch on Friday"). Only map it to a
   field when the user expressed scheduling intent.
2. deadline: a hard due date ("submit by March 3"). Only map it to a field
   when the user expressed a due date.
3. captured_at: when the capture was taken. Never map it to a do/deadline
   field; it is context, not intent.`

// BuildClassifyPrompt constructs the capture classification prompt.
func BuildClassifyPrompt(input, capturedAt string) string {
	return fmt.Sprintf(`You classify one captured note for a routing pipeline.

Current local time: %s

Captured text:
---
%s
---

Classify it and extract content. Reply with ONLY a JSON object:
{
  "category": "event" | "other",
  "title": "short title",
  "description": "one-line description",
  "content": "the essential content",
  "content_type": "note|task|movie|book|idea|contact|other",
  "confidence": 0.0-1.0,
  "start_time": "ISO-8601 local datetime with offset, events only, or null",
  "end_time": "ISO-8601 or null",
  "location": "string or null",
  "do_date": "ISO-8601 date the user wants to act, or null",
  "deadline": "ISO-8601 hard due date, or null",
  "analysis": "brief reasoning"
}

RULES:
1. "event" means a concrete appointment with a time or date ("dentist Friday 10am").
2. Anything else - notes, tasks, media to consume, ideas - is "other".
3. Resolve relative dates ("tomorrow", "next Friday") against the current local time above.
4. Never invent times the user did not state.`, capturedAt, input)
}

// BuildSelectPrompt constructs the destination selection prompt.
func BuildSelectPrompt(cls model.Classification, candidates []Candidate) string {
	candidatesJSON, _ := json.MarshalIndent(candidates, "", "  ")

	return fmt.Sprintf(`You route one captured note to the best-fitting destination.

Captured text: %q
Title: %q
Description: %q
Content type: %q

Candidate destinations (index, title, field names):
%s

Reply with ONLY a JSON object:
{
  "found_match": true | false,
  "selected_index": <index into the list above>,
  "confidence": 0.0-1.0,
  "reason": "why this destination fits (or why none does)"
}

RULES:
1. Match on what the content IS, not on surface words. A movie belongs in a
   movie list even if the note never says "movie".
2. Set found_match to false when no destination genuinely fits. Do not force
   a weak match.
3. Ignore log/history destinations; they record pipeline activity, not content.`,
		cls.RawInput, cls.Title, cls.Description, cls.ContentType, candidatesJSON)
}

// BuildMapPrompt constructs the dynamic field mapping prompt.
func BuildMapPrompt(cls model.Classification, fields []FieldSpec) string {
	fieldsJSON, _ := json.MarshalIndent(fields, "", "  ")
	clsJSON, _ := json.MarshalIndent(cls, "", "  ")

	return fmt.Sprintf(`You fill destination fields from one captured note.

Raw captured text: %q

Full classification:
%s

Destination fields (name, type, allowed options where closed):
%s

%s

Reply with ONLY a JSON object:
{
  "mappings": [
    {"field": "<field name>", "value": <value>, "source": "user"|"ai", "reasoning": "why"}
  ],
  "overall_reasoning": "brief overall notes"
}

RULES:
1. At most one mapping per field. Skip fields the capture says nothing about.
2. "source" is "user" when the value is stated in the capture, "ai" when inferred.
3. For select/status fields prefer an allowed option; match meaning, not spelling.
4. Dates must be ISO-8601. Lists of tags may be JSON arrays.
5. Never pad: an honest empty field beats an invented value.`,
		cls.RawInput, clsJSON, fieldsJSON, dateSemanticsRules)
}

// BuildIdentifyPrompt constructs the researchable-field identification prompt.
func BuildIdentifyPrompt(cls model.Classification, fields []FieldSpec) string {
	fieldsJSON, _ := json.MarshalIndent(fields, "", "  ")

	return fmt.Sprintf(`You decide which empty destination fields are factually researchable.

Captured text: %q
Title: %q
Content type: %q

Empty fields (name, type, allowed options where closed):
%s

A field is researchable only when its value is a verifiable fact about the
content itself - e.g. a film's director or release year. It is NOT
researchable when it is user-specific or subjective: personal ratings,
progress status, scheduling dates (do-date, deadline), private notes.

Reply with ONLY a JSON object:
{
  "researchable": [
    {"name": "<field name>", "type": "<type>", "options": [...] }
  ]
}`, cls.RawInput, cls.Title, cls.ContentType, fieldsJSON)
}

// BuildEnrichPrompt constructs the enrichment prompt.
func BuildEnrichPrompt(cls model.Classification, fields []FieldSpec, today string) string {
	fieldsJSON, _ := json.MarshalIndent(fields, "", "  ")

	return fmt.Sprintf(`You fill researchable fields with known facts about the captured content.

Captured text: %q
Title: %q
Content type: %q
Today's date: %s

Fields to research (name, type, allowed options where closed):
%s

Reply with ONLY a JSON object mapping field name to value, using null when
you do not know the fact:
{"<field name>": <value or null>, ...}

RULES:
1. Only state facts you are confident of. Prefer null over a guess.
2. A content-factual date (e.g. a publication date) may be filled. A
   user-scheduling date (do-date, deadline) must stay null; you cannot know
   the user's plans.
3. For select/status fields use an allowed option when one fits.
4. Values must be plain JSON scalars or arrays, not prose.`,
		cls.RawInput, cls.Title, cls.ContentType, today, fieldsJSON)
}
