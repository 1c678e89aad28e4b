// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthAccountBlocked     = "auth.account_blocked"

	// Catalog
	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductDeleted    = "product.deleted"
	KeyProductNotFound   = "product.not_found"
	KeyProductOutOfStock = "product.out_of_stock"
	KeyCategoryCreated   = "category.created"
	KeyCategoryUpdated   = "category.updated"
	KeyCategoryDeleted   = "category.deleted"
	KeyCategoryNotFound  = "category.not_found"

	// Cart / wishlist
	KeyCartItemAdded     = "cart.item_added"
	KeyCartItemRemoved   = "cart.item_removed"
	KeyCartCleared       = "cart.cleared"
	KeyCartMerged        = "cart.merged"
	KeyCartEmpty         = "cart.empty"
	KeyWishlistItemAdded   = "wishlist.item_added"
	KeyWishlistItemRemoved = "wishlist.item_removed"

	// Address
	KeyAddressCreated  = "address.created"
	KeyAddressUpdated  = "address.updated"
	KeyAddressDeleted  = "address.deleted"
	KeyAddressNotFound = "address.not_found"

	// Coupons
	KeyCouponApplied      = "coupon.applied"
	KeyCouponNotFound     = "coupon.not_found"
	KeyCouponInactive     = "coupon.inactive"
	KeyCouponExpired      = "coupon.expired"
	KeyCouponUsageLimit   = "coupon.usage_limit_reached"
	KeyCouponMinOrder     = "coupon.min_order_not_met"

	// Orders
	KeyOrderCreated       = "order.created"
	KeyOrderNotFound      = "order.not_found"
	KeyOrderStatusUpdated = "order.status_updated"
	KeyOrderBadTransition = "order.invalid_status_transition"

	// Payments
	KeyPaymentSuccess          = "payment.success"
	KeyPaymentFailed           = "payment.failed"
	KeyPaymentInvalidSignature = "payment.invalid_signature"

	// Notifications
	KeyNotificationSent         = "notification.sent"
	KeyNotificationFailed       = "notification.failed"
	KeyTokenRegistered          = "notification.token_registered"

	// Admin
	KeyAdminActionSuccess = "admin.action_success"
	KeyAdminAccessDenied  = "admin.access_denied"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"
)
