package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMeaningful_FiltersStopwordsAndShortTerms(t *testing.T) {
	assert.False(t, IsMeaningful("the"))
	assert.False(t, IsMeaningful("gp"))
	assert.True(t, IsMeaningful("ablation"))
}

func TestCanonicalInsurer_KnownVariant(t *testing.T) {
	assert.Equal(t, "Bupa", CanonicalInsurer("bupa"))
	assert.Equal(t, "AXA Health", CanonicalInsurer("AXA PPP"))
}

func TestCanonicalInsurer_UnknownDegradesToIdentity(t *testing.T) {
	assert.Equal(t, "SomeNewInsurer", CanonicalInsurer("  SomeNewInsurer  "))
}

func TestInsuranceMatches_SubstringBothDirections(t *testing.T) {
	assert.True(t, InsuranceMatches("Bupa", "bupa"))
	assert.True(t, InsuranceMatches("AXA Health", "axa"))
	assert.False(t, InsuranceMatches("Bupa", "vitality"))
}

func TestExpandEquivalents_ExactAlias(t *testing.T) {
	got := ExpandEquivalents("need svt ablation")
	assert.Contains(t, got, "supraventricular tachycardia")
}

func TestExpandEquivalents_OrthographicBidirectional(t *testing.T) {
	assert.Contains(t, ExpandEquivalents("ischaemic heart disease"), "ischemic")
	assert.Contains(t, ExpandEquivalents("ischemic heart disease"), "ischaemic")
}

func TestExpandEquivalents_ContextGated(t *testing.T) {
	withContext := ExpandEquivalents("echo for my heart")
	assert.Contains(t, withContext, "echocardiogram")

	withoutContext := ExpandEquivalents("echo of my voice")
	assert.NotContains(t, withoutContext, "echocardiogram")
}

func TestExpandEquivalents_CapsAtTwo(t *testing.T) {
	got := ExpandEquivalents("svt afib mi ischaemic echo heart")
	assert.LessOrEqual(t, len(got), 2)
}

func TestNormalizeEquivalence_NoExpansionReturnsOriginal(t *testing.T) {
	q := "looking for a nice cardiologist"
	assert.Equal(t, q, NormalizeEquivalence(q))
}
