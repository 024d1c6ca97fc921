package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCapability_RoleDefaults(t *testing.T) {
	cases := []struct {
		name    string
		role    Role
		feature Feature
		want    bool
	}{
		{"officer applies leave", RoleOfficer, FeatureLeaveApply, true},
		{"officer cannot approve", RoleOfficer, FeatureLeaveApprove, false},
		{"manager approves", RoleManager, FeatureLeaveApprove, true},
		{"agm approves", RoleAGM, FeatureLeaveApprove, true},
		{"ceo generates payroll", RoleCEO, FeaturePayrollGenerate, true},
		{"manager cannot generate payroll", RoleManager, FeaturePayrollGenerate, false},
		{"institution admin assigns substitutes", RoleInstitutionAdmin, FeatureSubstituteAssign, true},
		{"institution admin cannot create institution admins", RoleInstitutionAdmin, FeatureCreateInstitutionAdmin, false},
		{"super admin has everything", RoleSuperAdmin, FeatureCreateInstitutionAdmin, true},
		{"student has nothing", RoleStudent, FeatureLeaveApply, false},
		{"unknown role has nothing", Role("janitor"), FeatureLeaveApply, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, HasCapability(Principal{Role: c.role}, c.feature))
		})
	}
}

func TestHasCapability_AllowedFeaturesGrant(t *testing.T) {
	p := Principal{Role: RoleOfficer, AllowedFeatures: []Feature{FeatureSubstituteAssign}}

	assert.True(t, HasCapability(p, FeatureSubstituteAssign))
	assert.False(t, HasCapability(p, FeaturePayrollGenerate))
}

func TestParseFeatures_DropsUnknown(t *testing.T) {
	got := ParseFeatures([]string{"leave.apply", "crm.everything", "payroll.view"})
	assert.Equal(t, []Feature{FeatureLeaveApply, FeaturePayrollView}, got)
}

func TestRole_IsMetaStaff(t *testing.T) {
	assert.True(t, RoleCEO.IsMetaStaff())
	assert.True(t, RoleAdminStaff.IsMetaStaff())
	assert.False(t, RoleOfficer.IsMetaStaff())
	assert.False(t, RoleSuperAdmin.IsMetaStaff())
}
