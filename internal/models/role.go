package models

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

type Action string

const (
	ActionCreate        Action = "create"
	ActionRead          Action = "read"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionBrowseProduct Action = "browse_product"
	ActionBuyProduct    Action = "buy_product"
	ActionViewCSV       Action = "view_csv"
	ActionViewCharts    Action = "view_charts"
	ActionApplyAI       Action = "apply_ai"
)

var rolePermissions = map[Role][]Action{
	RoleAdmin: {
		ActionCreate,
		ActionRead,
		ActionUpdate,
		ActionDelete,
		ActionBrowseProduct,
		ActionBuyProduct,
		ActionViewCSV,
		ActionViewCharts,
		ActionApplyAI,
	},
	RoleCustomer: {
		ActionBrowseProduct,
		ActionBuyProduct,
	},
}

// Allowed reports whether role may perform action. Unknown roles and
// unknown actions are denied.
func Allowed(role Role, action Action) bool {
	for _, a := range rolePermissions[role] {
		if a == action {
			return true
		}
	}
	return false
}

func ValidRole(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}
