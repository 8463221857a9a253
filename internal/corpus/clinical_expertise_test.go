package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClinicalExpertise_StructuredBlob(t *testing.T) {
	raw := "Procedure: SVT ablation, pacemaker insertion; Condition: atrial fibrillation; Clinical Interests: sports cardiology"

	ce := ParseClinicalExpertise(raw)

	assert.True(t, ce.Structured)
	assert.Equal(t, []string{"SVT ablation", "pacemaker insertion"}, ce.Procedures)
	assert.Equal(t, []string{"atrial fibrillation"}, ce.Conditions)
	assert.Equal(t, []string{"sports cardiology"}, ce.ClinicalInterests)
	assert.Empty(t, ce.Raw)
}

func TestParseClinicalExpertise_PlainCommaList(t *testing.T) {
	raw := "heart failure, arrhythmia, hypertension"

	ce := ParseClinicalExpertise(raw)

	assert.False(t, ce.Structured)
	assert.Equal(t, raw, ce.Raw)
}

func TestParseClinicalExpertise_Empty(t *testing.T) {
	ce := ParseClinicalExpertise("  ")
	assert.False(t, ce.Structured)
	assert.Empty(t, ce.Raw)
	assert.Empty(t, ce.Procedures)
}

func TestParseClinicalExpertise_PartialStructuredSegments(t *testing.T) {
	raw := "Procedure: angioplasty"

	ce := ParseClinicalExpertise(raw)

	assert.True(t, ce.Structured)
	assert.Equal(t, []string{"angioplasty"}, ce.Procedures)
	assert.Empty(t, ce.Conditions)
	assert.Empty(t, ce.ClinicalInterests)
}

func TestPractitioner_ClinicalExpertise_DelegatesToParser(t *testing.T) {
	p := &Practitioner{ClinicalExpertiseRaw: "Condition: migraine"}

	ce := p.ClinicalExpertise()

	assert.True(t, ce.Structured)
	assert.Equal(t, []string{"migraine"}, ce.Conditions)
}

func TestPractitioner_IsNHS(t *testing.T) {
	assert.True(t, (&Practitioner{NHSBase: "Guy's Hospital"}).IsNHS())
	assert.True(t, (&Practitioner{NHSPosts: []string{"St Thomas'"}}).IsNHS())
	assert.False(t, (&Practitioner{}).IsNHS())
}
