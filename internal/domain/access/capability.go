package access

type Feature string

const (
	// Leave
	FeatureLeaveApply       Feature = "leave.apply"
	FeatureLeaveViewAll     Feature = "leave.view_all"
	FeatureLeaveApprove     Feature = "leave.approve"
	FeatureSubstituteAssign Feature = "substitute.assign"

	// Attendance
	FeatureAttendanceRecord  Feature = "attendance.record"
	FeatureAttendanceViewAll Feature = "attendance.view_all"
	FeatureAttendanceManage  Feature = "attendance.manage"

	// Payroll
	FeaturePayrollView     Feature = "payroll.view"
	FeaturePayrollGenerate Feature = "payroll.generate"

	// Accounts
	FeatureCreateInstitutionAdmin Feature = "account.create_institution_admin"
	FeatureCreateStudent          Feature = "account.create_student"
	FeatureResetPassword          Feature = "account.reset_password"

	// Recruitment
	FeatureRecruitmentManage Feature = "recruitment.manage"
)

var allFeatures = []Feature{
	FeatureLeaveApply, FeatureLeaveViewAll, FeatureLeaveApprove, FeatureSubstituteAssign,
	FeatureAttendanceRecord, FeatureAttendanceViewAll, FeatureAttendanceManage,
	FeaturePayrollView, FeaturePayrollGenerate,
	FeatureCreateInstitutionAdmin, FeatureCreateStudent, FeatureResetPassword,
	FeatureRecruitmentManage,
}

func (f Feature) IsValid() bool {
	for _, known := range allFeatures {
		if known == f {
			return true
		}
	}
	return false
}

var approverFeatures = []Feature{
	FeatureLeaveApply,
	FeatureLeaveViewAll,
	FeatureLeaveApprove,
	FeatureAttendanceRecord,
	FeatureAttendanceViewAll,
	FeaturePayrollView,
}

// RoleCapabilities maps roles to their default features.
var RoleCapabilities = map[Role][]Feature{
	RoleSuperAdmin:  allFeatures,
	RoleSystemAdmin: allFeatures,
	RoleInstitutionAdmin: {
		FeatureLeaveViewAll,
		FeatureSubstituteAssign,
		FeatureAttendanceViewAll,
		FeatureAttendanceManage,
		FeatureCreateStudent,
		FeatureResetPassword,
	},
	RoleOfficer: {
		FeatureLeaveApply,
		FeatureAttendanceRecord,
	},
	RoleStudent: {},
	RoleCEO: append(approverFeatures,
		FeaturePayrollGenerate,
		FeatureRecruitmentManage,
	),
	RoleMD:      approverFeatures,
	RoleAGM:     approverFeatures,
	RoleGM:      approverFeatures,
	RoleManager: approverFeatures,
	RoleAdminStaff: {
		FeatureLeaveApply,
		FeatureAttendanceRecord,
		FeatureRecruitmentManage,
	},
}

// HasCapability reports whether the principal may use the feature, either
// through its role defaults or an explicit grant.
func HasCapability(p Principal, feature Feature) bool {
	for _, f := range RoleCapabilities[p.Role] {
		if f == feature {
			return true
		}
	}
	for _, f := range p.AllowedFeatures {
		if f == feature {
			return true
		}
	}
	return false
}

// ParseFeatures converts raw feature strings, dropping unknown values.
func ParseFeatures(raw []string) []Feature {
	features := make([]Feature, 0, len(raw))
	for _, r := range raw {
		f := Feature(r)
		if f.IsValid() {
			features = append(features, f)
		}
	}
	return features
}
