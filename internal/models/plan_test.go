package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanTier_AtLeast(t *testing.T) {
	assert.True(t, PlanBasic.AtLeast(PlanBasic))
	assert.False(t, PlanBasic.AtLeast(PlanPro))
	assert.True(t, PlanPro.AtLeast(PlanBasic))
	assert.False(t, PlanPro.AtLeast(PlanEnterprise))
	assert.True(t, PlanEnterprise.AtLeast(PlanPro))
}

func TestPlanTier_UnknownNeverQualifies(t *testing.T) {
	unknown := PlanTier("platinum")
	assert.False(t, unknown.Valid())
	assert.False(t, unknown.AtLeast(PlanBasic))
	assert.False(t, PlanBasic.AtLeast(unknown))
}
