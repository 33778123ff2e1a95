package gsheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/diegoclair/slack-qotd-bot/internal/domain"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/entity"
)

// Service reads daily questions from a Google Sheet. The sheet's first row is
// a header row; every question row is keyed by its Date column (YYYY-MM-DD).
type Service struct {
	svc       *sheets.Service
	sheetID   string
	readRange string
	log       zerolog.Logger
}

func New(ctx context.Context, credentialsPath, sheetID, readRange string, log zerolog.Logger) (*Service, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	log.Info().Msg("Google Sheets service initialized")

	return &Service{
		svc:       svc,
		sheetID:   sheetID,
		readRange: readRange,
		log:       log,
	}, nil
}

// FetchQuestion returns the question scheduled for the given day key, or
// (nil, nil) when the sheet has no row for that date.
func (s *Service) FetchQuestion(ctx context.Context, date string) (*entity.Question, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet values: %w", err)
	}

	question := questionForDate(resp.Values, date)
	if question == nil {
		s.log.Warn().Str("date", date).Msg("no question found in sheet")
		return nil, nil
	}

	s.log.Info().Str("date", date).Str("number", question.Number).Msg("found question in sheet")
	return question, nil
}

// questionForDate zips the header row with each data row and returns the
// first row whose Date column matches. Short rows are padded so trailing
// empty cells behave like empty strings.
func questionForDate(values [][]interface{}, date string) *entity.Question {
	if len(values) < 2 {
		return nil
	}

	headers := make([]string, len(values[0]))
	for i, cell := range values[0] {
		headers[i] = cellText(cell)
	}

	for _, row := range values[1:] {
		fields := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				fields[header] = cellText(row[i])
			} else {
				fields[header] = ""
			}
		}

		if fields["Date"] != date {
			continue
		}

		return questionFromFields(fields)
	}

	return nil
}

func questionFromFields(fields map[string]string) *entity.Question {
	question := &entity.Question{
		Number:     orDefault(fields["Number"], domain.DefaultNumber),
		Statement:  orDefault(fields["Problem Statement"], domain.DefaultStatement),
		Genre:      orDefault(fields["Genre"], domain.DefaultGenre),
		Difficulty: orDefault(titleCase(fields["Difficulty"]), domain.DefaultDifficulty),
		Curator:    orDefault(fields["Curator"], domain.DefaultCurator),
	}

	for i := 1; i <= domain.MaxHints; i++ {
		if hint := fields[fmt.Sprintf("Hint %d", i)]; hint != "" {
			question.Hints = append(question.Hints, hint)
		}
	}

	return question
}

func cellText(cell interface{}) string {
	if s, ok := cell.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(cell))
}

// titleCase normalizes sheet difficulties like "easy" or "HARD" to the tier
// names keyed in domain.DifficultyColors.
func titleCase(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
