package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/pders01/extraction-plan/internal/models"
)

// Section markers of the plan grammar
const (
	SafeSection  = "SAFE OPERATIONS"
	RiskySection = "REQUIRES USER APPROVAL"
)

// Field labels of the plan grammar
const (
	LabelTarget          = "Target Location"
	LabelOperation       = "Operation"
	LabelContentToAdd    = "Content to Add"
	LabelRationale       = "Rationale"
	LabelDependencies    = "Dependencies"
	LabelCurrentContent  = "Current Content"
	LabelProposedContent = "Proposed Content"
	LabelRiskAssessment  = "Risk Assessment"
	LabelApprovalStatus  = "Approval Status"

	LabelDocumentType   = "Document Type"
	LabelContentSummary = "Content Summary"
	LabelKeyElements    = "Key Data Elements Identified"
	LabelSafeCount      = "Safe Operations"
	LabelApprovalCount  = "Approval Required"
	LabelEstimatedTime  = "Estimated Completion Time"
)

var fencedLabels = map[string]bool{
	strings.ToLower(LabelContentToAdd):    true,
	strings.ToLower(LabelCurrentContent):  true,
	strings.ToLower(LabelProposedContent): true,
}

var leadingDigits = regexp.MustCompile(`^\d+`)

// ParseFile reads and parses the plan at path
func ParseFile(path string) (*models.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("plan file %s: %w", path, ErrNotFound)
		}
		return nil, &ParseError{Path: path, Err: fmt.Errorf("failed to read plan file: %w", err)}
	}

	p, err := Parse(string(data))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return p, nil
}

// Parse reconstructs a plan from its document text. Both section markers
// must be present; empty sections are valid. Fields missing from an
// operation block are left nil.
func Parse(text string) (*models.Plan, error) {
	d := scan(text)

	safeStart, safeEnd, ok := d.section(SafeSection)
	if !ok {
		return nil, &ParseError{Section: SafeSection}
	}
	riskyStart, riskyEnd, ok := d.section(RiskySection)
	if !ok {
		return nil, &ParseError{Section: RiskySection}
	}

	p := &models.Plan{
		SafeOperations:  []models.Operation{},
		RiskyOperations: []models.Operation{},
		Metadata:        parseMetadata(d),
	}
	for _, b := range d.blocks(safeStart, safeEnd) {
		p.SafeOperations = append(p.SafeOperations, parseBlock(d, b, true))
	}
	for _, b := range d.blocks(riskyStart, riskyEnd) {
		p.RiskyOperations = append(p.RiskyOperations, parseBlock(d, b, false))
	}
	return p, nil
}

// parseBlock extracts the fields of one operation. The first occurrence of
// each label wins and field order does not matter.
func parseBlock(d *document, b block, safe bool) models.Operation {
	values := map[string]string{}
	for i := b.start; i < b.end; i++ {
		label, value, ok := d.lines[i].field()
		if !ok {
			continue
		}
		key := strings.ToLower(label)
		if _, seen := values[key]; seen {
			continue
		}
		if fencedLabels[key] {
			if content, ok := d.fenced(i, b.end, value); ok {
				values[key] = content
			}
			continue
		}
		values[key] = value
	}

	get := func(label string) *string {
		if v, ok := values[strings.ToLower(label)]; ok {
			return &v
		}
		return nil
	}

	op := models.Operation{
		Number:    b.number,
		Rationale: get(LabelRationale),
	}
	if b.target != "" {
		op.Target = models.Ptr(b.target)
	}
	if kind := get(LabelOperation); kind != nil {
		op.Kind = models.ParseKind(*kind)
	}

	if safe {
		op.Safe = &models.SafeFields{
			ContentToAdd: get(LabelContentToAdd),
			Dependencies: get(LabelDependencies),
		}
	} else {
		op.Risky = &models.RiskyFields{
			CurrentContent:  get(LabelCurrentContent),
			ProposedContent: get(LabelProposedContent),
			RiskAssessment:  get(LabelRiskAssessment),
			ApprovalStatus:  get(LabelApprovalStatus),
		}
	}
	return op
}

// parseMetadata pulls the top-level labeled fields from anywhere in the document
func parseMetadata(d *document) map[string]string {
	keys := map[string]string{
		strings.ToLower(LabelDocumentType):   models.MetaDocumentType,
		strings.ToLower(LabelContentSummary): models.MetaContentSummary,
		strings.ToLower(LabelSafeCount):      models.MetaSafeCount,
		strings.ToLower(LabelApprovalCount):  models.MetaApprovalRequired,
		strings.ToLower(LabelEstimatedTime):  models.MetaEstimatedTime,
	}

	meta := map[string]string{}
	for _, l := range d.lines {
		label, value, ok := l.field()
		if !ok {
			continue
		}
		key, known := keys[strings.ToLower(label)]
		if !known {
			continue
		}
		if _, seen := meta[key]; seen {
			continue
		}
		if key == models.MetaSafeCount || key == models.MetaApprovalRequired {
			value = leadingDigits.FindString(value)
			if value == "" {
				continue
			}
		}
		meta[key] = value
	}
	return meta
}
