// internal/prompts/templates.go
package prompts

import (
	"fmt"
	"strings"
	"text/template"

	apperrors "tdlr-processor/internal/common/errors"
)

// Stage names, used as template keys and as the assessment field names of the
// persisted record.
const (
	StageCompleteness   = "completeness_check"
	StageRisk           = "risk_assessment"
	StageRecommendation = "final_recommendation"
)

// Stages lists the pipeline stages in execution order.
var Stages = []string{StageCompleteness, StageRisk, StageRecommendation}

// stageTemplate couples a parsed template with the placeholder names it
// requires. Render refuses to run with any of them absent.
type stageTemplate struct {
	required []string
	tmpl     *template.Template
}

// Store holds the immutable stage templates. Construct once at startup and
// pass explicitly; there is no package-level template state.
type Store struct {
	templates map[string]stageTemplate
}

func NewStore() Store {
	return Store{templates: map[string]stageTemplate{
		StageCompleteness: {
			required: []string{"license_type", "application_data"},
			tmpl:     template.Must(template.New(StageCompleteness).Parse(completenessTemplate)),
		},
		StageRisk: {
			required: []string{"application_data"},
			tmpl:     template.Must(template.New(StageRisk).Parse(riskTemplate)),
		},
		StageRecommendation: {
			required: []string{"completeness_result", "risk_result"},
			tmpl:     template.Must(template.New(StageRecommendation).Parse(recommendationTemplate)),
		},
	}}
}

// Render binds values into the named stage template. Identical bindings always
// produce a byte-identical prompt; callers serialize structured values to a
// stable textual form before binding.
func (s Store) Render(stage string, bindings map[string]string) (string, error) {
	st, ok := s.templates[stage]
	if !ok {
		return "", fmt.Errorf("unknown stage template: %s", stage)
	}

	for _, name := range st.required {
		if _, present := bindings[name]; !present {
			return "", apperrors.NewMissingBindingError(stage, name)
		}
	}

	var buf strings.Builder
	if err := st.tmpl.Execute(&buf, bindings); err != nil {
		return "", fmt.Errorf("render %s: %w", stage, err)
	}
	return buf.String(), nil
}

// Required returns the placeholder names the stage template declares.
func (s Store) Required(stage string) []string {
	st, ok := s.templates[stage]
	if !ok {
		return nil
	}
	out := make([]string, len(st.required))
	copy(out, st.required)
	return out
}

const completenessTemplate = `You are an expert Texas Department of Licensing and Regulation (TDLR) application reviewer.

ROLE: Document completeness validator
TASK: Analyze the provided license application for completeness and accuracy
CONTEXT: TDLR requires specific documents and information for each license type

REQUIRED DOCUMENTS FOR {{index . "license_type"}}:
- Completed application form
- Proof of insurance (minimum coverage requirements)
- Background check results (not older than 90 days)
- Fee payment confirmation
- Work experience verification
- Training certificates (if applicable)

APPLICATION DATA:
{{index . "application_data"}}

EVALUATION CRITERIA:
1. Check each required document (Present/Missing/Incomplete)
2. Verify information consistency across documents
3. Identify any red flags or inconsistencies
4. Assign completeness score (0-100)

RETURN STRICTLY IN THIS JSON FORMAT:
{
    "completeness_score": 0-100,
    "missing_documents": ["list of missing items"],
    "incomplete_documents": ["list of incomplete items"],
    "consistency_issues": ["list of inconsistencies found"],
    "next_actions": ["list of required actions"],
    "processing_priority": "High/Standard/Low",
    "estimated_resolution_time": "X business days"
}`

const riskTemplate = `You are a TDLR risk assessment specialist with expertise in identifying potential licensing risks.

ROLE: Risk analysis expert
TASK: Evaluate application for potential risks and compliance issues
CONTEXT: Protect public safety while ensuring fair licensing practices

RISK FACTORS TO EVALUATE:
- Criminal background (type, severity, recency, relevance to license)
- Previous license violations or suspensions
- Financial history (bankruptcies, liens, judgments)
- Work history gaps or inconsistencies
- Insurance coverage adequacy
- Training/certification currency

APPLICATION DATA:
{{index . "application_data"}}

RISK SCORING SCALE:
- Low Risk (1-3): Standard processing, minimal oversight
- Medium Risk (4-6): Additional documentation or interview required
- High Risk (7-9): Management review and possible hearing required
- Critical Risk (10): Immediate escalation and potential denial

RETURN STRICTLY IN THIS JSON FORMAT:
{
    "risk_score": 1-10,
    "risk_level": "Low/Medium/High/Critical",
    "risk_factors": ["list of identified risks"],
    "mitigation_recommendations": ["list of recommended actions"],
    "reviewer_notes": "detailed analysis for human reviewer",
    "requires_human_review": true/false,
    "recommended_action": "Approve/Request_Additional_Info/Schedule_Interview/Deny"
}`

const recommendationTemplate = `You are a senior TDLR licensing officer making final processing recommendations.

ROLE: Senior licensing decision maker
TASK: Synthesize completeness and risk assessments into final recommendation
CONTEXT: Balance public protection with fair licensing practices

COMPLETENESS ASSESSMENT:
{{index . "completeness_result"}}

RISK ASSESSMENT:
{{index . "risk_result"}}

DECISION CRITERIA:
- Applications must be >80% complete for approval consideration
- Risk scores >6 require additional review
- All safety-critical positions require enhanced scrutiny
- Consider applicant's demonstration of good faith compliance efforts

RETURN STRICTLY IN THIS JSON FORMAT:
{
    "final_recommendation": "Approve/Conditional_Approve/Request_Additional_Info/Deny",
    "conditions": ["list of approval conditions if applicable"],
    "required_actions": ["list of actions needed before final approval"],
    "processing_timeline": "X business days",
    "priority_flag": "Standard/Expedite/Hold",
    "reviewer_notes": "summary for licensing staff",
    "citizen_communication": "message to send to applicant"
}`
