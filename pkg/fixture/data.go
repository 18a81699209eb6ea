package fixture

import "github.com/meridianclaims/payerkb/pkg/kb"

// rule is one canned knowledge-base entry. Keywords drive the toy scorer in
// server.go; the other fields flow straight into Source citations.
type rule struct {
	ID            int64
	PayerName     string
	RuleType      string
	Title         string
	Content       string
	EffectiveDate string
	SourceURL     string
	Keywords      []string
}

var fixtureRules = []rule{
	{
		ID:            1,
		PayerName:     "Aetna",
		RuleType:      "timely_filing",
		Title:         "Timely Filing Requirements",
		Content:       "Claims must be submitted within 90 days of the date of service. Corrected claims must be received within 180 days of the original determination.",
		EffectiveDate: "2025-01-01",
		SourceURL:     "https://www.aetna.com/providers/timely-filing.pdf",
		Keywords:      []string{"timely", "filing", "deadline", "90", "days", "claims", "submit", "aetna"},
	},
	{
		ID:            2,
		PayerName:     "Aetna",
		RuleType:      "prior_auth",
		Title:         "Prior Authorization for Advanced Imaging",
		Content:       "MRI, CT, and PET scans require prior authorization. Requests should be submitted at least 5 business days before the scheduled service.",
		EffectiveDate: "2024-07-15",
		SourceURL:     "https://www.aetna.com/providers/prior-auth.pdf",
		Keywords:      []string{"prior", "authorization", "auth", "imaging", "mri", "ct", "pet", "aetna"},
	},
	{
		ID:            3,
		PayerName:     "Cigna",
		RuleType:      "timely_filing",
		Title:         "Claim Submission Deadlines",
		Content:       "Participating providers must file claims within 90 days of service. Out-of-network providers have 180 days.",
		EffectiveDate: "2024-10-01",
		SourceURL:     "https://www.cigna.com/providers/claim-deadlines.pdf",
		Keywords:      []string{"timely", "filing", "deadline", "claims", "90", "180", "days", "cigna"},
	},
	{
		ID:            4,
		PayerName:     "UnitedHealthcare",
		RuleType:      "appeals",
		Title:         "Provider Appeal Process",
		Content:       "First-level appeals must be filed within 12 months of the claim determination. Include the original claim number and supporting documentation.",
		EffectiveDate: "2025-03-01",
		SourceURL:     "https://www.uhcprovider.com/appeals.pdf",
		Keywords:      []string{"appeal", "appeals", "dispute", "determination", "12", "months", "unitedhealthcare", "uhc"},
	},
	{
		ID:            5,
		PayerName:     "Humana",
		RuleType:      "claims_submission",
		Title:         "Electronic Claims Submission",
		Content:       "Electronic claims are processed within 15 days on average. Use payer ID 61101 for professional claims and 12422 for institutional claims.",
		EffectiveDate: "2024-05-20",
		SourceURL:     "https://www.humana.com/providers/edi.pdf",
		Keywords:      []string{"electronic", "claims", "submission", "edi", "payer", "id", "humana"},
	},
	{
		ID:            6,
		PayerName:     "Anthem",
		RuleType:      "prior_auth",
		Title:         "Specialty Pharmacy Prior Authorization",
		Content:       "Specialty medications require prior authorization renewed every 6 months. Expedited review is available for urgent clinical situations.",
		EffectiveDate: "2025-02-10",
		SourceURL:     "https://www.anthem.com/providers/specialty-pa.pdf",
		Keywords:      []string{"specialty", "pharmacy", "prior", "authorization", "auth", "medication", "anthem"},
	},
}

var fixturePayers = []kb.Payer{
	{ID: 1, Name: "Aetna", Website: "https://www.aetna.com", Priority: "high", IsActive: true},
	{ID: 2, Name: "Cigna", Website: "https://www.cigna.com", Priority: "high", IsActive: true},
	{ID: 3, Name: "UnitedHealthcare", Website: "https://www.uhc.com", Priority: "high", IsActive: true},
	{ID: 4, Name: "Humana", Website: "https://www.humana.com", Priority: "medium", IsActive: true},
	{ID: 5, Name: "Anthem", Website: "https://www.anthem.com", Priority: "medium", IsActive: true},
}

var fixtureAlerts = []kb.Alert{
	{
		ID:        1,
		Title:     "Aetna timely filing window changed",
		Message:   "Timely filing reduced from 120 to 90 days effective January 1.",
		AlertType: "rule_change",
		Severity:  "critical",
		IsRead:    false,
		CreatedAt: "2025-08-20T14:05:00Z",
	},
	{
		ID:        2,
		Title:     "UHC appeal form updated",
		Message:   "The single paper claim reconsideration form was revised.",
		AlertType: "document_update",
		Severity:  "warning",
		IsRead:    false,
		CreatedAt: "2025-08-18T09:30:00Z",
	},
	{
		ID:        3,
		Title:     "Humana EDI maintenance window",
		Message:   "Claims gateway unavailable Sunday 02:00-04:00 ET.",
		AlertType: "system",
		Severity:  "info",
		IsRead:    true,
		CreatedAt: "2025-08-15T16:45:00Z",
	},
}
