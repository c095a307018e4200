package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const scorePrompt = `Anda adalah asisten rekrutmen. Nilai kecocokan kandidat dengan lowongan berikut.
Jawab HANYA dengan JSON: {"score": <0-100>, "reason": "<satu kalimat>", "matched_skills": ["..."]}

Lowongan:
Judul: %s
Deskripsi: %s
Persyaratan: %s
Skill: %s
Pengalaman minimal: %d tahun

Kandidat:
Nama: %s
Posisi saat ini: %s
Ringkasan: %s
Skill: %s
Pengalaman: %s
Pendidikan: %s`

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName, credentialsFile string) (*VertexGemini, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := vertexgenai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	m.SetTemperature(0.1)
	m.ResponseMIMEType = "application/json"
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) ScoreCandidate(ctx context.Context, job Opening, c Candidate) (Score, error) {
	prompt := fmt.Sprintf(scorePrompt,
		job.Title, job.Description, job.Requirements, strings.Join(job.Skills, ", "), job.MinExperience,
		c.Name, c.CurrentTitle, c.Summary, strings.Join(c.Skills, ", "), c.Experience, c.Education)

	var sb strings.Builder
	it := v.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return Score{}, err
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(vertexgenai.Text); ok {
					sb.WriteString(string(t))
				}
			}
		}
	}

	return parseScore(sb.String())
}

func parseScore(raw string) (Score, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var s Score
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &s); err != nil {
		return Score{}, fmt.Errorf("llm: decode score: %w", err)
	}
	if s.Value < 0 || s.Value > 100 {
		return Score{}, fmt.Errorf("llm: score out of range: %d", s.Value)
	}
	s.Source = "vertex"
	return s, nil
}
