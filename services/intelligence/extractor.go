package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"slotify/models"
	"slotify/utils"
)

// historyTurns bounds how much conversation is replayed to the model.
const historyTurns = 4

var ErrUnresolvableDate = errors.New("date expression could not be resolved")

// Extractor pulls structured scheduling entities out of free-form user
// messages. Implementations may be wrong or incomplete; callers must
// validate every field before trusting it.
type Extractor interface {
	ExtractEntities(ctx context.Context, sess *models.Session, utterance string, now time.Time) (models.ExtractedEntities, error)
	ResolveDate(ctx context.Context, expression string, now time.Time) (time.Time, error)
}

type DefaultExtractor struct {
	client *GeminiClient
	loc    *time.Location
}

func NewExtractor(client *GeminiClient, loc *time.Location) *DefaultExtractor {
	return &DefaultExtractor{client: client, loc: loc}
}

// ExtractEntities asks the model for a JSON reading of the utterance. A
// response that is not parseable JSON yields empty entities rather than an
// error; only transport or API failures are returned to the caller.
func (e *DefaultExtractor) ExtractEntities(ctx context.Context, sess *models.Session, utterance string, now time.Time) (models.ExtractedEntities, error) {
	prompt := buildExtractionPrompt(sess, utterance, now)
	raw, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return models.ExtractedEntities{}, fmt.Errorf("extract entities: %w", err)
	}

	entities := parseEntitiesResponse(raw)
	if entities.Empty() {
		utils.GetLogger().Debug("entity extraction yielded nothing usable",
			zap.String("session", sess.ID),
			zap.Int("responseLen", len(raw)))
	}
	return entities, nil
}

// ResolveDate turns expressions like "tomorrow" or "next Friday" into a
// midnight timestamp in the assistant's reference zone.
func (e *DefaultExtractor) ResolveDate(ctx context.Context, expression string, now time.Time) (time.Time, error) {
	prompt := buildDateResolutionPrompt(expression, now)
	raw, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return time.Time{}, fmt.Errorf("resolve date: %w", err)
	}
	return parseDateResponse(raw, e.loc)
}

func parseEntitiesResponse(raw string) models.ExtractedEntities {
	body, ok := jsonObject(raw)
	if !ok {
		return models.ExtractedEntities{}
	}

	var out models.ExtractedEntities
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return models.ExtractedEntities{}
	}

	out.Intent = strings.ToLower(strings.TrimSpace(out.Intent))
	out.Confirmation = strings.ToLower(strings.TrimSpace(out.Confirmation))
	out.TimePreference = strings.ToLower(strings.TrimSpace(out.TimePreference))
	out.DatePreference = strings.TrimSpace(out.DatePreference)
	out.MeetingTitle = strings.TrimSpace(out.MeetingTitle)
	return out
}

// jsonObject trims prose and code fences around the first {...} block.
func jsonObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

var isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

func parseDateResponse(raw string, loc *time.Location) (time.Time, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "`", ""))
	if strings.Contains(strings.ToUpper(cleaned), "INVALID") {
		return time.Time{}, ErrUnresolvableDate
	}
	match := isoDateRe.FindString(cleaned)
	if match == "" {
		return time.Time{}, ErrUnresolvableDate
	}
	day, err := time.ParseInLocation("2006-01-02", match, loc)
	if err != nil {
		return time.Time{}, ErrUnresolvableDate
	}
	return day, nil
}
