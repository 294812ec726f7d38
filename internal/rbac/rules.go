package rbac

// Default policy. Admins manage content and reports; students sit exams.
var RolePermissions = map[string][]string{
	"student": {
		"question:view",
		"schedule:view",
		"exam:register",
		"attempt:start",
		"attempt:submit",
		"attempt:view-own",
		"student:view-own",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
