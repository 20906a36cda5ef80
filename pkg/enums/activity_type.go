package enums

// ActivityType tags rows in activity_logs with the action they record.
type ActivityType string

const (
	ActivityUserRegistered      ActivityType = "user_registered"
	ActivityUserLoggedIn        ActivityType = "user_logged_in"
	ActivityPointsAwarded       ActivityType = "points_awarded"
	ActivityPointsAdjusted      ActivityType = "points_adjusted"
	ActivityWithdrawalRequested ActivityType = "withdrawal_requested"
	ActivityWithdrawalReviewed  ActivityType = "withdrawal_reviewed"
	ActivityPricingUpdated      ActivityType = "pricing_updated"
	ActivityMachineMaintenance  ActivityType = "machine_maintenance"
	ActivityBottleReset         ActivityType = "bottle_reset"
	ActivityDangerReset         ActivityType = "danger_reset"
)
