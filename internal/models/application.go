// internal/models/application.go
package models

// ApplicationRecord is the immutable input to the evaluation pipeline. The
// nested applicant/work/background fields carry no fixed schema; downstream
// consumers read them defensively.
type ApplicationRecord struct {
	ApplicationID string                 `json:"application_id"`
	LicenseType   string                 `json:"license_type"`
	Fields        map[string]interface{} `json:"fields"`
}

// ToMap returns a fresh flat map of the record, suitable for serialization
// into a prompt. The identifying fields are merged over a copy of Fields so
// callers can never mutate the record through the result.
func (r ApplicationRecord) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["application_id"] = r.ApplicationID
	out["license_type"] = r.LicenseType
	return out
}

// SampleApplication returns the fixed demonstration record used by the
// sample-run entry point and the harness base case.
func SampleApplication() ApplicationRecord {
	return ApplicationRecord{
		ApplicationID: "TDLR-2024-AC-12345",
		LicenseType:   "Air Conditioning Contractor",
		Fields: map[string]interface{}{
			"applicant_info": map[string]interface{}{
				"name":          "John Smith",
				"business_name": "Smith HVAC Services",
				"address":       "123 Main St, Austin, TX 78701",
				"phone":         "(512) 555-0123",
				"email":         "john@smithhvac.com",
			},
			"documents_submitted": []interface{}{
				"Application Form TDLR-AC-001",
				"Proof of Insurance - General Liability $1M",
				"Background Check - Travis County Sheriff",
				"Payment Receipt - $185 Application Fee",
			},
			"work_experience": map[string]interface{}{
				"years_experience":   8,
				"previous_employers": []interface{}{"ABC Cooling", "XYZ Mechanical"},
				"certifications":     []interface{}{"EPA 608 Universal", "NATE Certified"},
			},
			"background_info": map[string]interface{}{
				"criminal_history":   "None reported",
				"license_violations": "None",
				"financial_history":  "No bankruptcies or liens",
			},
		},
	}
}
