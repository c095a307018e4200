package llm

import (
	"context"
	"sort"
	"strings"
)

// Candidate is the part of a jobseeker profile a scorer looks at.
type Candidate struct {
	Name         string
	CurrentTitle string
	Summary      string
	Skills       []string
	Experience   string // raw JSON
	Education    string // raw JSON
}

// Opening is the part of a job a scorer looks at.
type Opening struct {
	Title         string
	Description   string
	Requirements  string
	Skills        []string
	MinExperience int
}

type Score struct {
	Value   int      `json:"score"` // 0..100
	Reason  string   `json:"reason"`
	Matched []string `json:"matched_skills"`
	Source  string   `json:"source"`
}

type Scorer interface {
	ScoreCandidate(ctx context.Context, job Opening, c Candidate) (Score, error)
}

// KeywordScorer scores by skill overlap. It never fails.
type KeywordScorer struct{}

func (KeywordScorer) ScoreCandidate(_ context.Context, job Opening, c Candidate) (Score, error) {
	wanted := normalizeSkills(job.Skills)
	if len(wanted) == 0 {
		wanted = normalizeSkills(strings.FieldsFunc(job.Requirements, func(r rune) bool {
			return r == ',' || r == '\n' || r == ';'
		}))
	}
	have := normalizeSkills(c.Skills)

	var matched []string
	for skill := range wanted {
		if _, ok := have[skill]; ok {
			matched = append(matched, skill)
		}
	}
	sort.Strings(matched)

	score := 0
	if len(wanted) > 0 {
		score = len(matched) * 100 / len(wanted)
	}
	return Score{
		Value:   score,
		Reason:  "skill overlap",
		Matched: matched,
		Source:  "keyword",
	}, nil
}

func normalizeSkills(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

// Fallback asks Primary first and Secondary when Primary is nil or fails.
type Fallback struct {
	Primary   Scorer
	Secondary Scorer
	OnError   func(err error)
}

func (f Fallback) ScoreCandidate(ctx context.Context, job Opening, c Candidate) (Score, error) {
	if f.Primary != nil {
		s, err := f.Primary.ScoreCandidate(ctx, job, c)
		if err == nil {
			return s, nil
		}
		if f.OnError != nil {
			f.OnError(err)
		}
	}
	return f.Secondary.ScoreCandidate(ctx, job, c)
}
