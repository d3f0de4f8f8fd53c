package model

type DashboardStats struct {
	TodayPlanCount       int
	PendingOrdersCount   int
	CompletedOrdersCount int
	DelayedOrdersCount   int
	TodayPlan            []PlanDetail
	PendingOrders        []Order
	DelayedOrders        []Order
}
