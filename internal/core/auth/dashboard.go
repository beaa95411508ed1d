package auth

// 三类角色
const (
	RoleCustomer = "customer"
	RoleDealer   = "dealer"
	RoleAdmin    = "admin"
)

// 面板名称，和路由守卫、令牌里的 dashboardAccess 一一对应
const (
	DashboardCustomer = "customer"
	DashboardDealer   = "dealer"
	DashboardAdmin    = "admin"
)

// DashboardsFor 角色 → 可进入的面板集合。全站唯一的映射入口：
// 注册、登录、权限查询都走这里，避免两处各写一份后漂移。
// 未识别的角色一律按普通顾客处理。
func DashboardsFor(userType string) []string {
	switch userType {
	case RoleDealer:
		return []string{DashboardCustomer, DashboardDealer}
	case RoleAdmin:
		return []string{DashboardDealer, DashboardCustomer, DashboardAdmin}
	case RoleCustomer:
		return []string{DashboardCustomer}
	default:
		return []string{DashboardCustomer}
	}
}

// HasDashboard 集合成员判断
func HasDashboard(dashboards []string, name string) bool {
	for _, d := range dashboards {
		if d == name {
			return true
		}
	}
	return false
}
