// Package report renders pre-consultation assessment reports, as a PDF from
// a live conversation or as JSON from offline intake details.
package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"go.opentelemetry.io/otel"

	"github.com/arogyamitra/health-chatbot/internal/ledger"
	"github.com/arogyamitra/health-chatbot/internal/llm"
	"github.com/arogyamitra/health-chatbot/pkg/logging"
)

var reportTracer = otel.Tracer("healthchatbot.internal.report")

// PatientDetails heads every generated report.
type PatientDetails struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Age      string `json:"age"`
	Language string `json:"language"`
}

// OfflineRequest carries intake answers collected outside a conversation.
type OfflineRequest struct {
	PatientDetails
	Department string `json:"department"`
	Responses  string `json:"responses"`
}

// OfflineReport is the JSON report for offline intake.
type OfflineReport struct {
	PatientDetails PatientDetails `json:"patient_details"`
	Department     string         `json:"department"`
	Report         string         `json:"report"`
	Remarks        string         `json:"remarks"`
}

// Service generates reports through the LLM generator.
type Service struct {
	gen    *llm.Generator
	logger *logging.Logger
}

func NewService(gen *llm.Generator, logger *logging.Logger) *Service {
	if gen == nil {
		panic("report: generator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{gen: gen, logger: logger}
}

// Generate summarizes the conversation into an assessment and renders it as
// a PDF.
func (s *Service) Generate(ctx context.Context, details PatientDetails, l ledger.Ledger) ([]byte, error) {
	ctx, span := reportTracer.Start(ctx, "report.generate")
	defer span.End()

	language := details.Language
	if language == "" {
		language = "English"
	}

	text, err := s.gen.Generate(ctx, llm.KindReportSummary, map[string]string{
		"language":             language,
		"conversation_history": l.ModelVisible().Transcript(),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	pdf, err := renderPDF(details, text)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return pdf, nil
}

// GenerateOffline builds the question set and summary from intake answers
// without a conversation ledger.
func (s *Service) GenerateOffline(ctx context.Context, req OfflineRequest) (OfflineReport, error) {
	ctx, span := reportTracer.Start(ctx, "report.generate_offline")
	defer span.End()

	language := req.Language
	if language == "" {
		language = "English"
	}

	content, err := s.gen.Generate(ctx, llm.KindOfflineReport, map[string]string{
		"age":        req.Age,
		"gender":     req.Gender,
		"department": req.Department,
		"responses":  req.Responses,
		"language":   language,
	})
	if err != nil {
		span.RecordError(err)
		return OfflineReport{}, err
	}

	return OfflineReport{
		PatientDetails: req.PatientDetails,
		Department:     req.Department,
		Report:         content,
		Remarks:        "Auto-generated offline medical assessment for doctor review.",
	}, nil
}

func renderPDF(details PatientDetails, text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Medical Consultation Report", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Patient Details", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Name: "+details.Name, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Gender: "+details.Gender, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Age: "+details.Age, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if isHeading(paragraph) {
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 7, stripEmphasis(paragraph), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		} else {
			pdf.MultiCell(0, 6, stripEmphasis(paragraph), "", "L", false)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: pdf render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func isHeading(paragraph string) bool {
	if strings.Contains(paragraph, "\n") {
		return false
	}
	trimmed := strings.TrimSuffix(strings.TrimSpace(paragraph), ":")
	if strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**") {
		return true
	}
	return strings.HasSuffix(strings.TrimSpace(paragraph), ":")
}

func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, "**", "")
}
