package filters

import (
	"context"
	"testing"

	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePractitioners() []corpus.Practitioner {
	return []corpus.Practitioner{
		{
			ID: "p1", Name: "Dr A", Title: "Mr", Specialty: "Cardiology",
			InsuranceProviders: []corpus.InsuranceProvider{{CanonicalName: "Bupa"}},
			NHSBase:            "Guy's Hospital",
			PatientAgeGroup:    []string{"Paediatric"},
			Languages:          []string{"English", "French"},
		},
		{
			ID: "p2", Name: "Dr B", Title: "Mrs", Specialty: "Dermatology",
			InsuranceProviders: []corpus.InsuranceProvider{{CanonicalName: "AXA Health"}},
			PatientAgeGroup:    []string{"Adult"},
			Languages:          []string{"Spanish"},
		},
		{
			ID: "p3", Name: "Dr C", Blacklisted: true, Specialty: "Cardiology",
		},
	}
}

func TestApply_BlacklistDropsFlaggedPractitioners(t *testing.T) {
	result, err := Apply(context.Background(), samplePractitioners(), Request{}, nil)
	require.NoError(t, err)
	for _, p := range result {
		assert.False(t, p.Blacklisted)
	}
	assert.Len(t, result, 2)
}

func TestApply_NHSModeKeepsOnlyNHSRecords(t *testing.T) {
	result, err := Apply(context.Background(), samplePractitioners(), Request{NHSMode: true}, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "p1", result[0].ID)
}

func TestApply_InsuranceMatchesCanonicalVariant(t *testing.T) {
	result, err := Apply(context.Background(), samplePractitioners(), Request{Insurance: "axa"}, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "p2", result[0].ID)
}

func TestApply_GenderInferredFromTitle(t *testing.T) {
	result, err := Apply(context.Background(), samplePractitioners(), Request{Gender: "female"}, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "p2", result[0].ID)
}

func TestApply_SpecialtyBidirectionalSubstring(t *testing.T) {
	result, err := Apply(context.Background(), samplePractitioners(), Request{SpecialtyQuery: "cardio"}, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "p1", result[0].ID)
}

func TestApply_AgeGroupPaediatricEquivalence(t *testing.T) {
	result, err := Apply(context.Background(), samplePractitioners(), Request{AgeGroup: "pediatric"}, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "p1", result[0].ID)
}

func TestApply_EmptyIntermediateStageShortCircuits(t *testing.T) {
	result, err := Apply(context.Background(), samplePractitioners(), Request{
		NHSMode:   true,
		Insurance: "vitality", // p1 is NHS but doesn't carry Vitality
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResolveGender_PronounCounting(t *testing.T) {
	p := corpus.Practitioner{Description: "He trained at Guy's. His clinic focuses on cardiac care. He also teaches."}
	assert.Equal(t, corpus.GenderMale, resolveGender(p))
}

func TestResolveGender_TiedPronounsIsUnknown(t *testing.T) {
	p := corpus.Practitioner{Description: "He and she co-authored the paper."}
	assert.Equal(t, corpus.GenderUnknown, resolveGender(p))
}

func TestResolveGender_ExplicitFieldWins(t *testing.T) {
	p := corpus.Practitioner{Gender: corpus.GenderFemale, Title: "Mr"}
	assert.Equal(t, corpus.GenderFemale, resolveGender(p))
}

func TestApply_UnknownGenderIsIncludedPermissively(t *testing.T) {
	practitioners := []corpus.Practitioner{{ID: "p4", Title: "Dr"}}
	result, err := Apply(context.Background(), practitioners, Request{Gender: "male"}, nil)
	require.NoError(t, err)
	assert.Len(t, result, 1)
}
