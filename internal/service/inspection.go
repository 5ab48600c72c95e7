package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm"
)

// MinAuditImages is the number of angles an audit needs to be meaningful.
const MinAuditImages = 2

const (
	VerdictVerified      = "verified"
	VerdictRejected      = "rejected"
	VerdictNeedsMoreInfo = "needs_more_info"
)

type AuditVerdict struct {
	Status          string   `json:"status"`
	ItemIdentified  string   `json:"item_identified"`
	SafetyScore     int      `json:"safety_score"`
	FlawsFound      []string `json:"flaws_found"`
	Reason          string   `json:"reason"`
	MissingEvidence string   `json:"missing_evidence"`
}

type VideoVerdict struct {
	IsMedical bool     `json:"is_medical"`
	IsSafe    bool     `json:"is_safe"`
	ItemName  string   `json:"item_name"`
	Flaws     []string `json:"flaws"`
	Summary   string   `json:"summary"`
}

// rawAudit accepts a fractional score, which some models produce.
type rawAudit struct {
	Status          string   `json:"status"`
	ItemIdentified  string   `json:"item_identified"`
	SafetyScore     float64  `json:"safety_score"`
	FlawsFound      []string `json:"flaws_found"`
	Reason          string   `json:"reason"`
	MissingEvidence string   `json:"missing_evidence"`
}

type InspectionService struct {
	model    llm.Model
	recorder Recorder
	logger   *slog.Logger
}

func NewInspectionService(model llm.Model, recorder Recorder, logger *slog.Logger) *InspectionService {
	return &InspectionService{model: model, recorder: recorderOrNop(recorder), logger: logger}
}

// AuditItem asks the model for a condition verdict on photos of one item.
func (s *InspectionService) AuditItem(ctx context.Context, images []llm.Media) (*AuditVerdict, error) {
	if len(images) < MinAuditImages {
		return nil, domain.Invalid("Please upload at least 2 images (different angles) to verify safety.")
	}

	s.logger.Info("audit started", "images", len(images))
	var raw rawAudit
	if err := s.generateJSON(ctx, "audit", llm.Request{
		System: auditSystem,
		Prompt: auditPrompt,
		Media:  images,
	}, &raw); err != nil {
		return nil, err
	}

	verdict := normaliseAudit(raw)
	s.logger.Info("audit complete", "status", verdict.Status, "safety_score", verdict.SafetyScore, "item", verdict.ItemIdentified)
	return verdict, nil
}

// AnalyzeVideo asks the model for a safety summary of a walk-around video.
func (s *InspectionService) AnalyzeVideo(ctx context.Context, video llm.Media) (*VideoVerdict, error) {
	if len(video.Data) == 0 {
		return nil, domain.Invalid("video file is required")
	}

	s.logger.Info("video analysis started", "mime_type", video.MimeType, "bytes", len(video.Data))
	var verdict VideoVerdict
	if err := s.generateJSON(ctx, "video", llm.Request{
		System: videoSystem,
		Prompt: videoPrompt,
		Media:  []llm.Media{video},
	}, &verdict); err != nil {
		return nil, err
	}
	if verdict.Flaws == nil {
		verdict.Flaws = []string{}
	}

	s.logger.Info("video analysis complete", "item", verdict.ItemName, "is_medical", verdict.IsMedical, "is_safe", verdict.IsSafe)
	return &verdict, nil
}

func (s *InspectionService) generateJSON(ctx context.Context, op string, req llm.Request, v any) error {
	start := time.Now()
	text, err := s.model.Generate(ctx, req)
	if err == nil {
		err = llm.DecodeJSON(text, v)
	}
	s.recorder.ModelCall(op, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s model call failed: %w", op, err)
	}
	return nil
}

func normaliseAudit(raw rawAudit) *AuditVerdict {
	v := &AuditVerdict{
		Status:          strings.ToLower(strings.TrimSpace(raw.Status)),
		ItemIdentified:  raw.ItemIdentified,
		SafetyScore:     int(math.Round(raw.SafetyScore)),
		FlawsFound:      raw.FlawsFound,
		Reason:          raw.Reason,
		MissingEvidence: raw.MissingEvidence,
	}
	switch v.Status {
	case VerdictVerified, VerdictRejected, VerdictNeedsMoreInfo:
	default:
		v.Status = VerdictNeedsMoreInfo
	}
	if v.SafetyScore < 1 {
		v.SafetyScore = 1
	}
	if v.SafetyScore > 10 {
		v.SafetyScore = 10
	}
	if v.FlawsFound == nil {
		v.FlawsFound = []string{}
	}
	return v
}
