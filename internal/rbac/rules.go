package rbac

// Route-level policy. Course ownership is checked separately by the grade
// service; these gates only decide who may reach an endpoint at all.
var RolePermissions = map[string][]string{
	"student": {
		"grades:view-own",
		"courses:view",
		"user:change_password",
	},
	"teacher": {
		"grades:write",
		"grades:view",
		"summary:view",
		"courses:view",
		"courses:create",
		"assessments:manage",
		"students:list",
		"user:change_password",
	},
	"administrative": {
		"*", // everything
	},
}
