package usecase

import "go.uber.org/fx"

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewSettings,
	NewAuthUseCase,
	NewCelebrityUseCase,
	NewCheckoutUseCase,
	NewBookingUseCase,
	NewDeliveryUseCase,
	NewApprovalUseCase,
	NewTipUseCase,
	NewReviewUseCase,
	NewOrderUseCase,
	NewWebhookUseCase,
	NewOutboxUseCase,
	NewMaintenanceUseCase,
)
